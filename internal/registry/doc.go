// Package registry talks to the image registry on behalf of a run.
//
// A [Client] wraps regclient and covers the three registry interactions the
// coordinator needs: pushing per-platform content from a local OCI layout,
// publishing the joined manifest list under every resolved tag in one call,
// and reading the published reference back for verification. Credentials
// are opaque: an explicit user/password pair is forwarded as-is, otherwise
// ambient docker credential helpers apply.
//
// Example usage:
//
//	client := registry.New(registry.Options{
//	    Repository: "ghcr.io/example/app",
//	    Username:   "release-bot",
//	    Password:   password,
//	})
//	defer client.Close(ctx)
//
//	dgst, err := client.Publish(ctx, entries, []string{"nightly", "sha-abc123def456"})
//	if err != nil {
//	    return err
//	}
//	if err := client.Verify(ctx, "nightly", len(entries)); err != nil {
//	    return err
//	}
package registry
