// Package result defines the outcome taxonomy shared by the document,
// command and scheduler layers. Every edit operation either succeeds or
// fails with exactly one of these sentinels, which the scheduler maps
// directly onto the wire protocol's Reject reason.
package result

import "errors"

var (
	// ErrInvalidPosition covers out-of-range positions, malformed
	// arguments (bad heading level, empty range) and unknown commands.
	ErrInvalidPosition = errors.New("result: invalid position")

	// ErrDeletedPosition stands for an edit targeting a byte range inside
	// an already-deleted segment. No edit operation returns it: deleted
	// segments have zero width in the flatten view, so such a position
	// is simply out of range (ErrInvalidPosition). It is kept so Wire can
	// render the DELETED_POSITION reason.
	ErrDeletedPosition = errors.New("result: deleted position")

	// ErrOutdatedVersion is returned when a command's version does not
	// match the document's version at the time it is applied.
	ErrOutdatedVersion = errors.New("result: outdated version")

	// ErrUnauthorised is returned by the session/permission layer, never
	// by the document itself; included here so callers can map it with
	// the same Wire function.
	ErrUnauthorised = errors.New("result: unauthorised")
)

// Wire renders err as the reason token the wire protocol expects after
// "Reject ", or "SUCCESS" for a nil err.
func Wire(err error) string {
	switch {
	case err == nil:
		return "SUCCESS"
	case errors.Is(err, ErrUnauthorised):
		return "Reject UNAUTHORISED"
	case errors.Is(err, ErrDeletedPosition):
		return "Reject DELETED_POSITION"
	case errors.Is(err, ErrOutdatedVersion):
		return "Reject OUTDATED_VERSION"
	default:
		return "Reject INVALID_POSITION"
	}
}
