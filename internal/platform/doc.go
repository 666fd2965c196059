// Package platform models the build targets of a run.
//
// A [Target] is a normalized operating-system/architecture pair (with an
// optional variant) identifying one build variant of an image. Targets are
// parsed from the "os/arch[/variant]" strings used in configuration and
// normalized through containerd's platform rules, so "linux/aarch64" and
// "linux/arm64" name the same target.
//
// Example usage:
//
//	targets, err := platform.ParseAll([]string{"linux/amd64", "linux/arm64"})
//	if err != nil {
//	    return err
//	}
//	for _, t := range targets {
//	    fmt.Println(t.String(), t.Slug())
//	}
package platform
