// Package builder invokes the image builder for one platform at a time.
//
// The coordinator does not compile anything itself; a [Builder] backend is
// invoked once per platform per run and must return the content-addressed
// descriptor of the built image, or fail. Three backends are provided:
//
//   - [CommandBuilder] runs an external build command (e.g. buildctl or
//     docker buildx) and reads the resulting buildctl-style metadata file.
//   - [LayoutBuilder] pushes a pre-built per-platform OCI layout directory
//     to the registry and reports the pushed digest.
//   - [ContainerdBuilder] imports a per-platform OCI archive into
//     containerd, resolves the platform's manifest, and pushes it.
//
// Backends push per-platform content under scratch tags derived from the
// run's commit; the resolved tag set of the run is only ever touched by the
// merge step.
//
// Example usage:
//
//	b := builder.NewCommand(cfg.Builder.Command, cfg.Builder.MetadataDir)
//	desc, err := b.Build(ctx, target)
//	if err != nil {
//	    return err
//	}
package builder
