package tags

import (
	"fmt"
	"strings"
)

// What caused a run.
type Cause string

const (
	CausePush     Cause = "push"     // A commit was pushed.
	CauseSchedule Cause = "schedule" // A scheduled trigger fired.
	CauseManual   Cause = "manual"   // An operator started the run.
)

const (

	// Stable alias assigned to scheduled runs.
	nightlyTag = "nightly"

	// Prefix of the commit-derived tag.
	commitTagPrefix = "sha-"

	// Length the commit identifier is shortened to in the commit tag.
	shortCommitLen = 12
)

// The cause and source revision a run was started for.
//
// Supplied by the hosting pipeline; the coordinator never derives trigger
// state itself.
type Trigger struct {
	Cause    Cause  // What started the run.
	Commit   string // Source commit identifier. Required.
	Schedule string // Schedule expression that fired, for scheduled runs.
}

// Parses a cause string.
func ParseCause(s string) (Cause, error) {
	switch Cause(strings.ToLower(strings.TrimSpace(s))) {
	case CausePush:
		return CausePush, nil
	case CauseSchedule:
		return CauseSchedule, nil
	case CauseManual, "":
		return CauseManual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCause, s)
}

// Resolves the tag set for a run.
//
// The commit-derived tag is always present. When the trigger is a schedule
// whose expression matches nightlySchedule, the "nightly" alias is resolved
// as well and ordered first, making it the primary tag. Resolution order is
// otherwise irrelevant, but all resolved tags must be applied in the same
// publish call.
func Resolve(trigger Trigger, nightlySchedule string) ([]string, error) {
	commit := strings.TrimSpace(trigger.Commit)
	if commit == "" {
		return nil, ErrNoCommit
	}

	var set []string
	if trigger.Cause == CauseSchedule && scheduleMatches(trigger.Schedule, nightlySchedule) {
		set = append(set, nightlyTag)
	}

	return append(set, commitTag(commit)), nil
}

// Returns the primary tag of a resolved set.
//
// The primary tag is used for post-publish verification.
func Primary(set []string) string {
	if len(set) == 0 {
		return ""
	}
	return set[0]
}

// Whether the firing schedule expression names the nightly trigger.
//
// Expressions are compared after whitespace normalization; the coordinator
// does not interpret cron semantics, it only recognizes the configured
// expression.
func scheduleMatches(fired, configured string) bool {
	if configured == "" {
		return false
	}
	return strings.Join(strings.Fields(fired), " ") == strings.Join(strings.Fields(configured), " ")
}

// Derives the traceability tag from a commit identifier.
func commitTag(commit string) string {
	return commitTagPrefix + ShortCommit(commit)
}

// Shortens a commit identifier to the length used in tags.
//
// Also used as the scratch-tag prefix for per-platform content pushes.
func ShortCommit(commit string) string {
	commit = strings.TrimSpace(commit)
	if len(commit) > shortCommitLen {
		commit = commit[:shortCommitLen]
	}
	return strings.ToLower(commit)
}
