// Package tags derives the tag set of a run from its trigger context.
//
// Every run yields a commit-derived tag for traceability. A run caused by a
// schedule whose expression matches the configured nightly schedule
// additionally yields the stable "nightly" alias, ordered first. All
// resolved tags are applied in the same publish call; the first tag is the
// primary one used for post-publish verification.
//
// Example usage:
//
//	set, err := tags.Resolve(tags.Trigger{
//	    Cause:    tags.CauseSchedule,
//	    Commit:   "abc123def4567890",
//	    Schedule: "0 2 * * *",
//	}, "0 2 * * *")
//	if err != nil {
//	    return err
//	}
//	// set = ["nightly", "sha-abc123def456"]
package tags
