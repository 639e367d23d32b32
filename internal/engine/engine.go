// Package engine implements the reconciliation engine: the single point
// translating store push events into a consistent local projection. Every
// other component only ever sees synchronous, already-reconciled state.
package engine

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/guard"
	"github.com/gravadigital/galawall-api/internal/logger"
	"github.com/gravadigital/galawall-api/internal/storage"
)

// Projection is the live, read-only view exposed to the rest of the
// application.
type Projection struct {
	Participants []contest.Participant  `json:"participants"`
	Config       contest.ActivityConfig `json:"config"`
	HasVoted     bool                   `json:"has_voted"`
}

// Engine reconciles the participant and config subscriptions against the
// local vote guard. If a subscription disconnects, the projection freezes at
// its last known good value; it is never cleared to empty.
type Engine struct {
	mu        sync.RWMutex
	guard     guard.Store
	proj      Projection
	lastReset int64
	hub       *storage.Hub[Projection]
	unsubs    []func()
	log       *log.Logger
}

// New creates an engine seeded from the local vote guard, so a restart does
// not forget a prior vote cast in the current reset epoch.
func New(guardStore guard.Store) *Engine {
	e := &Engine{
		guard: guardStore,
		proj: Projection{
			Config: contest.DefaultConfig(),
		},
		hub: storage.NewHub[Projection](),
		log: logger.Engine(),
	}

	state, err := guardStore.Get()
	if err != nil {
		e.log.Warn("failed to read vote guard, starting cleared", "error", err)
		return e
	}
	e.proj.HasVoted = state.Voted
	e.lastReset = state.LastReset
	return e
}

// Load performs a synchronous pull from both stores and applies the result.
// Used to seed the projection before subscriptions deliver, and by
// request-scoped engines that never subscribe at all.
func (e *Engine) Load(participants storage.ParticipantStore, configs storage.ConfigStore) error {
	cfg, err := configs.Read()
	if err != nil {
		return fmt.Errorf("%w: reading config: %v", contest.ErrStoreUnavailable, err)
	}
	list, err := participants.List()
	if err != nil {
		return fmt.Errorf("%w: listing participants: %v", contest.ErrStoreUnavailable, err)
	}

	e.applyConfig(cfg)
	e.applyParticipants(list)
	return nil
}

// Start subscribes to both stores. Pushes may arrive in any order relative
// to local writes; apply is idempotent per snapshot.
func (e *Engine) Start(participants storage.ParticipantStore, configs storage.ConfigStore) {
	e.mu.Lock()
	e.unsubs = append(e.unsubs,
		configs.Subscribe(e.applyConfig),
		participants.Subscribe(e.applyParticipants),
	)
	e.mu.Unlock()
}

// Stop detaches from the stores. The projection keeps its last value.
func (e *Engine) Stop() {
	e.mu.Lock()
	unsubs := e.unsubs
	e.unsubs = nil
	e.mu.Unlock()

	for _, unsub := range unsubs {
		unsub()
	}
}

// Snapshot returns the current reconciled projection.
func (e *Engine) Snapshot() Projection {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := e.proj
	snap.Participants = make([]contest.Participant, len(e.proj.Participants))
	copy(snap.Participants, e.proj.Participants)
	return snap
}

// Subscribe registers a callback invoked with the projection after every
// reconciled update. Returns an unsubscribe func.
func (e *Engine) Subscribe(fn func(Projection)) func() {
	return e.hub.Subscribe(fn)
}

// MarkVoted flips the local voted flag optimistically, before the next store
// push confirms the vote, and persists it to the guard. Later pushes can only
// confirm the flag within the same reset epoch; the sole path back to false
// is a newer reset timestamp.
func (e *Engine) MarkVoted() {
	e.mu.Lock()
	e.proj.HasVoted = true
	lastReset := e.lastReset
	snap := e.proj
	e.mu.Unlock()

	if err := e.guard.Set(guard.State{Voted: true, LastReset: lastReset}); err != nil {
		e.log.Error("failed to persist vote guard", "error", err)
	}
	e.hub.Publish(snap)
}

// applyParticipants replaces the projected list wholesale; the stores deliver
// full ordered snapshots.
func (e *Engine) applyParticipants(list []contest.Participant) {
	e.mu.Lock()
	e.proj.Participants = list
	snap := e.proj
	e.mu.Unlock()

	e.hub.Publish(snap)
}

// applyConfig applies a config push. A nil push means the store holds no
// record and the defaults are synthesized. A reset timestamp strictly newer
// than the last observed one re-arms the vote guard; a zero or unchanged
// timestamp never does, so redelivery of the same snapshot cannot toggle
// hasVoted.
func (e *Engine) applyConfig(cfg *contest.ActivityConfig) {
	applied := contest.DefaultConfig()
	if cfg != nil {
		applied = *cfg
	}

	e.mu.Lock()
	if applied.LastResetTimestamp > 0 && applied.LastResetTimestamp > e.lastReset {
		e.log.Info("reset observed, re-arming vote guard",
			"previous", e.lastReset, "current", applied.LastResetTimestamp)
		e.lastReset = applied.LastResetTimestamp
		e.proj.HasVoted = false
		if err := e.guard.Set(guard.State{Voted: false, LastReset: applied.LastResetTimestamp}); err != nil {
			e.log.Error("failed to persist vote guard after reset", "error", err)
		}
	}
	e.proj.Config = applied
	snap := e.proj
	e.mu.Unlock()

	e.hub.Publish(snap)
}

// LastReset returns the reset timestamp this engine has observed.
func (e *Engine) LastReset() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastReset
}
