// Package release coordinates one multi-architecture publish run.
//
// A run fans out one build per configured platform target, collects each
// platform's content digest in a run-scoped artifact store, and joins the
// results into a single manifest list published under every resolved tag.
// The fan-out is all-or-nothing: a failing build does not abort siblings
// already in flight, but the run fails once every job has reached a
// terminal state, and nothing is published. Failed runs never touch
// existing tags.
//
// Runs against the same repository coordinate are serialized through an
// exclusive lock file, since tags are reassignable pointers with no
// compare-and-swap primitive: two interleaved runs could otherwise lose an
// update when an older run's publish lands after a newer one's.
//
// Example usage:
//
//	result, err := release.Run(ctx, release.Options{
//	    Repository: "ghcr.io/example/app",
//	    Targets:    targets,
//	    Tags:       []string{"nightly", "sha-abc123def456"},
//	    Builder:    b,
//	    Publisher:  client,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Digest)
package release
