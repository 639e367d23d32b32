package contest

// LuckyWinner identifies the prize-draw winner by the voter info recorded on
// their ballot.
type LuckyWinner struct {
	VoterBadge string `json:"voter_badge"`
	VoterName  string `json:"voter_name"`
}

// ActivityConfig is the single shared configuration record gating the phases
// of the event. Exactly one live instance exists; when the config store holds
// no record, DefaultConfig applies.
//
// LastResetTimestamp (epoch milliseconds) identifies the current reset epoch.
// Zero means no reset has ever happened; clients must never re-arm their vote
// guard on a zero value.
type ActivityConfig struct {
	IsRegistrationOpen bool         `json:"is_registration_open"`
	IsVotingOpen       bool         `json:"is_voting_open"`
	IsResultsRevealed  bool         `json:"is_results_revealed"`
	LastResetTimestamp int64        `json:"last_reset_timestamp,omitempty"`
	LuckyDrawWinner    *LuckyWinner `json:"lucky_draw_winner,omitempty"`
}

// DefaultConfig is the configuration assumed when the store holds no record:
// both gates open, nothing revealed, no reset observed.
func DefaultConfig() ActivityConfig {
	return ActivityConfig{
		IsRegistrationOpen: true,
		IsVotingOpen:       true,
		IsResultsRevealed:  false,
	}
}
