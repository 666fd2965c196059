package registry

import "errors"

var (
	ErrPublish = errors.New("manifest publish failed")
	ErrVerify  = errors.New("published manifest verification failed")
	ErrPush    = errors.New("image push failed")
	ErrNoEntry = errors.New("manifest list has no entries")
)
