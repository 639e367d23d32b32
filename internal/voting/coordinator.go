// Package voting implements the voting coordinator: phase gating and the
// one-vote contract over the reconciled projection.
package voting

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/engine"
	"github.com/gravadigital/galawall-api/internal/logger"
	"github.com/gravadigital/galawall-api/internal/storage"
)

// Coordinator turns vote and registration intents into store writes, checking
// preconditions against the engine's projection.
type Coordinator struct {
	engine       *engine.Engine
	participants storage.ParticipantStore
	ballots      storage.BallotStore
	log          *log.Logger
}

// NewCoordinator creates a coordinator bound to one client's engine
func NewCoordinator(eng *engine.Engine, participants storage.ParticipantStore, ballots storage.BallotStore) *Coordinator {
	return &Coordinator{
		engine:       eng,
		participants: participants,
		ballots:      ballots,
		log:          logger.Service("voting"),
	}
}

// CastVote casts this client's single vote for the given participant.
//
// Preconditions are checked in order, short-circuiting: guard not yet voted,
// voting gate open, target present in the projected list. On acceptance the
// vote count is incremented by exactly one (a commutative add at the store,
// never a read-modify-write of a cached count), a ballot is appended when
// voter info was supplied, and the local voted flag flips immediately rather
// than waiting for the next store push. On rejection no state changes at all.
func (c *Coordinator) CastVote(participantID uuid.UUID, voter *contest.VoterInfo) error {
	snap := c.engine.Snapshot()

	if snap.HasVoted {
		c.log.Debug("vote rejected, guard already set", "participant_id", participantID)
		return contest.ErrAlreadyVoted
	}
	if !snap.Config.IsVotingOpen {
		c.log.Debug("vote rejected, voting closed", "participant_id", participantID)
		return contest.ErrVotingClosed
	}
	if !containsParticipant(snap.Participants, participantID) {
		c.log.Warn("vote rejected, participant not in projection", "participant_id", participantID)
		return contest.ErrUnknownParticipant
	}

	if err := c.participants.IncrementVote(participantID, 1); err != nil {
		c.log.Error("vote increment failed", "participant_id", participantID, "error", err)
		return fmt.Errorf("%w: incrementing vote: %v", contest.ErrStoreUnavailable, err)
	}

	if voter != nil {
		if err := c.ballots.Append(contest.NewBallot(participantID, *voter)); err != nil {
			// The increment already landed; surface the failure without
			// flipping the guard so the caller can retry the ballot.
			c.log.Error("ballot append failed after increment", "participant_id", participantID, "error", err)
			return fmt.Errorf("%w: appending ballot: %v", contest.ErrStoreUnavailable, err)
		}
	}

	c.engine.MarkVoted()
	c.log.Info("vote cast", "participant_id", participantID, "with_ballot", voter != nil)
	return nil
}

// RegisterParticipant creates a new contest entry, gated solely by the
// registration flag. The entry number is assigned by the participant store at
// creation time as count+1.
func (c *Coordinator) RegisterParticipant(name, badge, theme, photoURL string) (*contest.Participant, error) {
	snap := c.engine.Snapshot()

	if !snap.Config.IsRegistrationOpen {
		c.log.Debug("registration rejected, gate closed", "name", name)
		return nil, contest.ErrRegistrationClosed
	}

	p := contest.NewParticipant(name, badge, theme, photoURL)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := c.participants.Create(p); err != nil {
		c.log.Error("participant create failed", "name", name, "error", err)
		return nil, fmt.Errorf("%w: creating participant: %v", contest.ErrStoreUnavailable, err)
	}

	c.log.Info("participant registered", "participant_id", p.ID, "entry_number", p.EntryNumber)
	return p, nil
}

func containsParticipant(list []contest.Participant, id uuid.UUID) bool {
	for _, p := range list {
		if p.ID == id {
			return true
		}
	}
	return false
}
