// Package config loads the run configuration.
//
// The configuration is a YAML file naming the target repository coordinate,
// the ordered platform list, the schedule expression that identifies the
// nightly trigger, the builder backend, and opaque registry credentials.
// Unknown fields are rejected so typos fail the run before anything is
// dispatched.
//
// Example configuration:
//
//	repository: ghcr.io/example/app
//	platforms:
//	  - linux/amd64
//	  - linux/arm64
//	nightly_schedule: "0 2 * * *"
//	builder:
//	  kind: command
//	  command: ["buildctl", "build", "--opt", "platform={platform}", "--metadata-file", "{metadata}"]
//	  metadata_dir: dist/metadata
//	registry:
//	  username: release-bot
//	  password_env: REGISTRY_PASSWORD
package config
