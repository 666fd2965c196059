package builder

import "errors"

var (
	ErrCommand        = errors.New("build command failed")
	ErrMetadata       = errors.New("build metadata unreadable")
	ErrArchive        = errors.New("image archive unreadable")
	ErrMultipleImages = errors.New("archive contains multiple images")
	ErrNoManifest     = errors.New("no manifest for platform")
)
