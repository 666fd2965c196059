package release

import "errors"

var (
	ErrBuild           = errors.New("platform build failed")
	ErrArtifactMissing = errors.New("artifact store incomplete")
	ErrRunActive       = errors.New("another run is active for this repository")
	ErrNoTargets       = errors.New("no platform targets configured")
	ErrNoTags          = errors.New("no tags resolved")
)
