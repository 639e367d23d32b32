package contest

import "errors"

// Rejection taxonomy for the coordination core. All of these are reported to
// the caller as typed outcomes; none of them indicate a fault in the system.
var (
	// ErrAlreadyVoted rejects a vote from a client whose guard already holds
	// a vote for the current reset epoch.
	ErrAlreadyVoted = errors.New("already voted")

	// ErrVotingClosed rejects a vote while the voting gate is closed.
	ErrVotingClosed = errors.New("voting is closed")

	// ErrRegistrationClosed rejects a registration while the registration
	// gate is closed.
	ErrRegistrationClosed = errors.New("registration is closed")

	// ErrUnknownParticipant rejects a vote for a participant that is not in
	// the current projected list.
	ErrUnknownParticipant = errors.New("unknown participant")

	// ErrNoBallots rejects a prize draw over an empty ballot pool.
	ErrNoBallots = errors.New("no ballots to draw from")

	// ErrPreconditionFailed rejects arming the reveal while a required gate
	// is still open, no admin session is active, or no participants exist.
	ErrPreconditionFailed = errors.New("reveal precondition failed")

	// ErrStoreUnavailable wraps a subscription or write failure of one of
	// the backing stores.
	ErrStoreUnavailable = errors.New("store unavailable")
)
