package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/guard"
	"github.com/gravadigital/galawall-api/internal/storage/memory"
)

func seededGuard(t *testing.T, state guard.State) guard.Store {
	t.Helper()
	store := guard.NewMemoryStore()
	require.NoError(t, store.Set(state))
	return store
}

func TestNewSeedsFromGuard(t *testing.T) {
	eng := New(seededGuard(t, guard.State{Voted: true, LastReset: 100}))

	assert.True(t, eng.Snapshot().HasVoted, "a restart must not forget a vote cast in this epoch")
	assert.Equal(t, int64(100), eng.LastReset())
}

func TestLoadSynthesizesDefaultsWhenConfigAbsent(t *testing.T) {
	eng := New(guard.NewMemoryStore())

	require.NoError(t, eng.Load(memory.NewParticipantStore(), memory.NewConfigStore()))

	snap := eng.Snapshot()
	assert.True(t, snap.Config.IsRegistrationOpen)
	assert.True(t, snap.Config.IsVotingOpen)
	assert.False(t, snap.Config.IsResultsRevealed)
}

func TestNewerResetRearmsGuardExactlyOnce(t *testing.T) {
	guardStore := seededGuard(t, guard.State{Voted: true, LastReset: 100})
	eng := New(guardStore)

	cfg := contest.DefaultConfig()
	cfg.LastResetTimestamp = 200
	eng.applyConfig(&cfg)

	assert.False(t, eng.Snapshot().HasVoted, "a newer reset must clear the voted flag")
	assert.Equal(t, int64(200), eng.LastReset())

	persisted, err := guardStore.Get()
	require.NoError(t, err)
	assert.False(t, persisted.Voted)
	assert.Equal(t, int64(200), persisted.LastReset)

	// Redelivery of the same snapshot is a no-op even after a new vote.
	eng.MarkVoted()
	eng.applyConfig(&cfg)
	assert.True(t, eng.Snapshot().HasVoted, "an unchanged reset timestamp must never clear the flag again")
}

func TestOlderOrZeroResetNeverRearms(t *testing.T) {
	eng := New(seededGuard(t, guard.State{Voted: true, LastReset: 300}))

	older := contest.DefaultConfig()
	older.LastResetTimestamp = 200
	eng.applyConfig(&older)
	assert.True(t, eng.Snapshot().HasVoted)

	zero := contest.DefaultConfig()
	eng.applyConfig(&zero)
	assert.True(t, eng.Snapshot().HasVoted, "a config without a reset stamp must not re-arm the guard")
}

func TestMarkVotedPersistsToGuard(t *testing.T) {
	guardStore := guard.NewMemoryStore()
	eng := New(guardStore)

	eng.MarkVoted()

	assert.True(t, eng.Snapshot().HasVoted)
	persisted, err := guardStore.Get()
	require.NoError(t, err)
	assert.True(t, persisted.Voted)
}

func TestStartAppliesStorePushes(t *testing.T) {
	participants := memory.NewParticipantStore()
	configs := memory.NewConfigStore()
	eng := New(guard.NewMemoryStore())
	eng.Start(participants, configs)
	defer eng.Stop()

	require.NoError(t, participants.Create(contest.NewParticipant("Amy", "EMP1", "theme", "https://example.com/a.jpg")))

	cfg := contest.DefaultConfig()
	cfg.IsVotingOpen = false
	require.NoError(t, configs.Write(cfg))

	snap := eng.Snapshot()
	assert.Len(t, snap.Participants, 1)
	assert.False(t, snap.Config.IsVotingOpen)
}

func TestStopFreezesProjection(t *testing.T) {
	participants := memory.NewParticipantStore()
	configs := memory.NewConfigStore()
	eng := New(guard.NewMemoryStore())
	eng.Start(participants, configs)

	require.NoError(t, participants.Create(contest.NewParticipant("Amy", "EMP1", "theme", "https://example.com/a.jpg")))
	eng.Stop()

	require.NoError(t, participants.Create(contest.NewParticipant("Bo", "EMP2", "theme", "https://example.com/b.jpg")))

	assert.Len(t, eng.Snapshot().Participants, 1, "a detached engine keeps its last known good view")
}

func TestSubscribeDeliversReconciledProjection(t *testing.T) {
	participants := memory.NewParticipantStore()
	configs := memory.NewConfigStore()
	eng := New(guard.NewMemoryStore())
	eng.Start(participants, configs)
	defer eng.Stop()

	var last Projection
	eng.Subscribe(func(p Projection) { last = p })

	require.NoError(t, participants.Create(contest.NewParticipant("Amy", "EMP1", "theme", "https://example.com/a.jpg")))

	assert.Len(t, last.Participants, 1)
}
