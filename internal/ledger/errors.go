package ledger

import "errors"

var (
	ErrMemberNotFound = errors.New("ledger: member not found")

	// ErrNoActivePass means the member has no active pass reference; the
	// transaction is aborted before any write.
	ErrNoActivePass = errors.New("ledger: member has no active pass")

	// ErrPassNotFound means the member's active pass reference is dangling.
	ErrPassNotFound = errors.New("ledger: pass not found")

	// ErrUnsupportedPassType means the pass carries no session counters.
	// Duration-based and unlimited passes are never decremented by attendance;
	// callers surface this as a warning, not a hard failure.
	ErrUnsupportedPassType = errors.New("ledger: pass is not session-based")
)
