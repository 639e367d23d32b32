// Package reveal implements the results-reveal orchestrator as an explicit
// finite-state machine. The ceremony (suspense, third place, second,
// champion, prize winner) is a set of named states with guarded transitions,
// so the sequence is inspectable and resumable instead of existing only as
// pending timers.
package reveal

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/galawall-api/internal/config"
	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/engine"
	"github.com/gravadigital/galawall-api/internal/logger"
	"github.com/gravadigital/galawall-api/internal/storage"
)

// Orchestrator drives the staged reveal. Only one sequence may run at a
// time; arming while a sequence is in flight is a no-op. Timers are
// wall-clock relative and never persisted. The single durable checkpoint is
// the isResultsRevealed write at the champion stage, which promotes every
// other client straight to done.
type Orchestrator struct {
	mu      sync.Mutex
	state   State
	ranking []contest.Participant
	gen     int
	timers  []*time.Timer

	engine  *engine.Engine
	configs storage.ConfigStore
	timings config.RevealTimings
	hub     *storage.Hub[State]
	unsub   func()
	log     *log.Logger
}

// New creates an orchestrator in the idle state
func New(eng *engine.Engine, configs storage.ConfigStore, timings config.RevealTimings) *Orchestrator {
	return &Orchestrator{
		state:   StateIdle,
		engine:  eng,
		configs: configs,
		timings: timings,
		hub:     storage.NewHub[State](),
		log:     logger.Reveal(),
	}
}

// Start attaches the orchestrator to the engine's projection so it can take
// the persisted shortcut and return to idle after a reset.
func (o *Orchestrator) Start() {
	o.unsub = o.engine.Subscribe(o.onProjection)
}

// Stop cancels any in-flight sequence and detaches from the engine.
func (o *Orchestrator) Stop() {
	if o.unsub != nil {
		o.unsub()
		o.unsub = nil
	}

	o.mu.Lock()
	o.cancelTimersLocked()
	o.mu.Unlock()
}

// State returns the current state of the machine.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Ranking returns the ranking frozen when counting began. Empty until a
// sequence has started or the persisted shortcut was taken.
func (o *Orchestrator) Ranking() []contest.Participant {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]contest.Participant, len(o.ranking))
	copy(out, o.ranking)
	return out
}

// Podium returns the top three of the frozen ranking.
func (o *Orchestrator) Podium() []contest.Participant {
	return contest.Podium(o.Ranking())
}

// Subscribe registers a callback invoked on every state transition.
func (o *Orchestrator) Subscribe(fn func(State)) func() {
	return o.hub.Subscribe(fn)
}

// Arm triggers the reveal sequence. Preconditions, checked in order: an
// admin session must be active, registration and voting must both be closed,
// and at least one participant must exist. A failed precondition keeps the
// machine idle and reports which condition failed. Arming while a sequence
// is already running is a no-op; arming after completion is rejected until a
// reset returns the machine to idle.
func (o *Orchestrator) Arm(isAdmin bool) error {
	o.mu.Lock()

	if o.state.running() {
		o.log.Debug("arm ignored, sequence already running", "state", o.state)
		o.mu.Unlock()
		return nil
	}
	if o.state == StateDone {
		o.mu.Unlock()
		return fmt.Errorf("%w: results already revealed, reset required", contest.ErrPreconditionFailed)
	}

	snap := o.engine.Snapshot()
	if err := checkArmPreconditions(isAdmin, snap); err != nil {
		o.mu.Unlock()
		return err
	}

	o.setLocked(StateArmed)

	// Counting begins immediately; this is the moment the ranking freezes.
	// Votes arriving after this point do not change the displayed order.
	o.ranking = contest.Rank(snap.Participants)
	o.setLocked(StateCounting)

	t := o.timings
	countingEnd := t.Counting
	o.scheduleLocked(countingEnd+t.ThirdOffset, func() { o.advance(StateCounting, StateThird) })
	o.scheduleLocked(countingEnd+t.SecondOffset, func() { o.advance(StateThird, StateSecond) })
	o.scheduleLocked(countingEnd+t.FirstOffset, o.revealChampion)
	o.scheduleLocked(countingEnd+t.DrawOffset, o.drawOrFinish)

	o.log.Info("reveal sequence armed", "participants", len(snap.Participants))
	o.mu.Unlock()

	o.publish(StateArmed, StateCounting)
	return nil
}

// checkArmPreconditions reports the first violated arming gate.
func checkArmPreconditions(isAdmin bool, snap engine.Projection) error {
	if !isAdmin {
		return fmt.Errorf("%w: admin session required", contest.ErrPreconditionFailed)
	}
	if snap.Config.IsRegistrationOpen {
		return fmt.Errorf("%w: registration is still open", contest.ErrPreconditionFailed)
	}
	if snap.Config.IsVotingOpen {
		return fmt.Errorf("%w: voting is still open", contest.ErrPreconditionFailed)
	}
	if len(snap.Participants) == 0 {
		return fmt.Errorf("%w: no participants", contest.ErrPreconditionFailed)
	}
	return nil
}

// revealChampion enters the champion stage and writes the durable
// isResultsRevealed checkpoint. The write goes through the single config
// write path and is skipped when the flag is already set, so a retry leaves
// the config unchanged.
func (o *Orchestrator) revealChampion() {
	o.advance(StateSecond, StateFirst)

	snap := o.engine.Snapshot()
	if snap.Config.IsResultsRevealed {
		return
	}
	cfg := snap.Config
	cfg.IsResultsRevealed = true
	if err := o.configs.Write(cfg); err != nil {
		o.log.Error("failed to persist revealed checkpoint", "error", err)
	}
}

// drawOrFinish reveals the prize segment when a lucky winner exists,
// otherwise completes the ceremony directly. The winner is re-read at this
// moment so a draw performed during the sequence still gets its segment.
func (o *Orchestrator) drawOrFinish() {
	winner := o.engine.Snapshot().Config.LuckyDrawWinner

	o.mu.Lock()
	if o.state != StateFirst {
		o.mu.Unlock()
		return
	}

	if winner == nil {
		o.setLocked(StateDone)
		o.mu.Unlock()
		o.publish(StateDone)
		return
	}

	o.setLocked(StateDrawn)
	o.scheduleLocked(o.timings.FinaleHold, func() { o.advance(StateDrawn, StateDone) })
	o.mu.Unlock()
	o.publish(StateDrawn)
}

// advance moves the machine from an expected state to the next one.
func (o *Orchestrator) advance(from, to State) {
	o.mu.Lock()
	if o.state != from {
		o.mu.Unlock()
		return
	}
	o.setLocked(to)
	o.mu.Unlock()

	o.publish(to)
}

// onProjection reacts to reconciled config pushes. A client observing
// isResultsRevealed with no local sequence jumps straight to done, rendering
// final state with no animation. A reset (revealed flag dropped) returns a
// completed machine to idle so it can be re-armed.
func (o *Orchestrator) onProjection(p engine.Projection) {
	o.mu.Lock()

	switch {
	case o.state == StateIdle && p.Config.IsResultsRevealed:
		o.ranking = contest.Rank(p.Participants)
		o.setLocked(StateDone)
		o.mu.Unlock()
		o.publish(StateDone)
	case o.state == StateDone && !p.Config.IsResultsRevealed:
		o.cancelTimersLocked()
		o.ranking = nil
		o.setLocked(StateIdle)
		o.mu.Unlock()
		o.publish(StateIdle)
	default:
		o.mu.Unlock()
	}
}

func (o *Orchestrator) setLocked(next State) {
	o.log.Debug("state transition", "from", o.state, "to", next)
	o.state = next
}

func (o *Orchestrator) publish(states ...State) {
	for _, s := range states {
		o.hub.Publish(s)
	}
}

// scheduleLocked arms a timer bound to the current sequence generation, so a
// canceled sequence's timers cannot fire into a new one.
func (o *Orchestrator) scheduleLocked(d time.Duration, fn func()) {
	gen := o.gen
	timer := time.AfterFunc(d, func() {
		o.mu.Lock()
		stale := o.gen != gen
		o.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
	o.timers = append(o.timers, timer)
}

func (o *Orchestrator) cancelTimersLocked() {
	o.gen++
	for _, t := range o.timers {
		t.Stop()
	}
	o.timers = nil
}
