package platform

import "errors"

var (
	ErrInvalidTarget   = errors.New("invalid platform target")
	ErrDuplicateTarget = errors.New("duplicate platform target")
)
