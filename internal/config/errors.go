package config

import "errors"

var (
	ErrRead           = errors.New("failed to read configuration")
	ErrParse          = errors.New("failed to parse configuration")
	ErrMissingField   = errors.New("missing configuration field")
	ErrUnknownBuilder = errors.New("unknown builder kind")
)
