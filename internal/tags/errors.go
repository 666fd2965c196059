package tags

import "errors"

var (
	ErrNoCommit     = errors.New("no commit identifier in trigger context")
	ErrUnknownCause = errors.New("unknown trigger cause")
)
