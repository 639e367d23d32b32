package reveal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/galawall-api/internal/config"
	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/engine"
	"github.com/gravadigital/galawall-api/internal/guard"
	"github.com/gravadigital/galawall-api/internal/storage/memory"
)

// fastTimings compresses the ceremony to milliseconds so the full sequence
// runs inside a unit test.
func fastTimings() config.RevealTimings {
	return config.RevealTimings{
		Counting:     20 * time.Millisecond,
		ThirdOffset:  10 * time.Millisecond,
		SecondOffset: 20 * time.Millisecond,
		FirstOffset:  30 * time.Millisecond,
		DrawOffset:   40 * time.Millisecond,
		FinaleHold:   10 * time.Millisecond,
	}
}

type rig struct {
	participants *memory.ParticipantStore
	configs      *memory.ConfigStore
	engine       *engine.Engine
	orchestrator *Orchestrator
}

// newRig builds a closed-gates contest with the given participants and vote
// counts, ready to arm.
func newRig(t *testing.T, votes map[string]int) *rig {
	t.Helper()

	participants := memory.NewParticipantStore()
	configs := memory.NewConfigStore()

	cfg := contest.DefaultConfig()
	cfg.IsRegistrationOpen = false
	cfg.IsVotingOpen = false
	require.NoError(t, configs.Write(cfg))

	for _, name := range sortedKeys(votes) {
		p := contest.NewParticipant(name, "B-"+name, "theme", "https://example.com/"+name+".jpg")
		require.NoError(t, participants.Create(p))
		if votes[name] > 0 {
			require.NoError(t, participants.IncrementVote(p.ID, votes[name]))
		}
	}

	eng := engine.New(guard.NewMemoryStore())
	eng.Start(participants, configs)
	require.NoError(t, eng.Load(participants, configs))

	orchestrator := New(eng, configs, fastTimings())
	orchestrator.Start()
	t.Cleanup(func() {
		orchestrator.Stop()
		eng.Stop()
	})

	return &rig{
		participants: participants,
		configs:      configs,
		engine:       eng,
		orchestrator: orchestrator,
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			if keys[j] < keys[i] {
				keys[i], keys[j] = keys[j], keys[i]
			}
		}
	}
	return keys
}

func waitForState(t *testing.T, o *Orchestrator, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if o.State() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %s, stuck at %s", want, o.State())
}

type stateRecorder struct {
	mu     sync.Mutex
	states []State
}

func (r *stateRecorder) record(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *stateRecorder) seen() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.states))
	copy(out, r.states)
	return out
}

func TestArmRequiresAdmin(t *testing.T) {
	r := newRig(t, map[string]int{"Amy": 1})

	err := r.orchestrator.Arm(false)
	assert.ErrorIs(t, err, contest.ErrPreconditionFailed)
	assert.Equal(t, StateIdle, r.orchestrator.State())
}

func TestArmRequiresClosedGates(t *testing.T) {
	r := newRig(t, map[string]int{"Amy": 1})

	open := contest.DefaultConfig()
	open.IsVotingOpen = true
	open.IsRegistrationOpen = false
	require.NoError(t, r.configs.Write(open))

	err := r.orchestrator.Arm(true)
	assert.ErrorIs(t, err, contest.ErrPreconditionFailed)
	assert.Contains(t, err.Error(), "voting")
	assert.Equal(t, StateIdle, r.orchestrator.State())
}

func TestArmRequiresParticipants(t *testing.T) {
	r := newRig(t, map[string]int{})

	err := r.orchestrator.Arm(true)
	assert.ErrorIs(t, err, contest.ErrPreconditionFailed)
	assert.Contains(t, err.Error(), "participants")
}

func TestFullSequenceRunsToDone(t *testing.T) {
	r := newRig(t, map[string]int{"Amy": 3, "Bo": 1, "Cleo": 2})

	recorder := &stateRecorder{}
	r.orchestrator.Subscribe(recorder.record)

	require.NoError(t, r.orchestrator.Arm(true))
	waitForState(t, r.orchestrator, StateDone)

	seen := recorder.seen()
	// Ceremony order with no stage skipped; no winner was drawn, so the
	// machine finishes directly from the champion stage.
	assert.Equal(t, []State{StateArmed, StateCounting, StateThird, StateSecond, StateFirst, StateDone}, seen)
}

func TestChampionStageWritesRevealedCheckpoint(t *testing.T) {
	r := newRig(t, map[string]int{"Amy": 3, "Bo": 1})

	require.NoError(t, r.orchestrator.Arm(true))
	waitForState(t, r.orchestrator, StateDone)

	cfg, err := r.configs.Read()
	require.NoError(t, err)
	assert.True(t, cfg.IsResultsRevealed, "the champion stage persists the durable checkpoint")
}

func TestPodiumMatchesVotes(t *testing.T) {
	r := newRig(t, map[string]int{"Amy": 3, "Bo": 1})

	require.NoError(t, r.orchestrator.Arm(true))
	waitForState(t, r.orchestrator, StateDone)

	podium := r.orchestrator.Podium()
	require.Len(t, podium, 2)
	assert.Equal(t, "Amy", podium[0].Name, "3 votes beat 1")
	assert.Equal(t, "Bo", podium[1].Name)
}

func TestRankingFreezesWhenCountingBegins(t *testing.T) {
	r := newRig(t, map[string]int{"Amy": 3, "Bo": 1})

	require.NoError(t, r.orchestrator.Arm(true))

	// Votes landing after the sequence started must not reorder the podium.
	list, err := r.participants.List()
	require.NoError(t, err)
	for _, p := range list {
		if p.Name == "Bo" {
			require.NoError(t, r.participants.IncrementVote(p.ID, 10))
		}
	}

	waitForState(t, r.orchestrator, StateDone)

	podium := r.orchestrator.Podium()
	assert.Equal(t, "Amy", podium[0].Name, "ranking was frozen before the late votes")
}

func TestDrawnStageWhenWinnerExists(t *testing.T) {
	r := newRig(t, map[string]int{"Amy": 2})

	cfg, err := r.configs.Read()
	require.NoError(t, err)
	cfg.LuckyDrawWinner = &contest.LuckyWinner{VoterBadge: "EMP7", VoterName: "Zoe"}
	require.NoError(t, r.configs.Write(*cfg))

	recorder := &stateRecorder{}
	r.orchestrator.Subscribe(recorder.record)

	require.NoError(t, r.orchestrator.Arm(true))
	waitForState(t, r.orchestrator, StateDone)

	assert.Contains(t, recorder.seen(), StateDrawn, "a drawn winner gets its own stage before done")
}

func TestArmWhileRunningIsNoOp(t *testing.T) {
	r := newRig(t, map[string]int{"Amy": 1})

	require.NoError(t, r.orchestrator.Arm(true))
	require.NoError(t, r.orchestrator.Arm(true), "re-arming a running sequence is a silent no-op")

	waitForState(t, r.orchestrator, StateDone)
}

func TestArmAfterDoneRejected(t *testing.T) {
	r := newRig(t, map[string]int{"Amy": 1})

	require.NoError(t, r.orchestrator.Arm(true))
	waitForState(t, r.orchestrator, StateDone)

	err := r.orchestrator.Arm(true)
	assert.ErrorIs(t, err, contest.ErrPreconditionFailed)
}

func TestPersistedShortcutSkipsCeremony(t *testing.T) {
	r := newRig(t, map[string]int{"Amy": 3, "Bo": 1})

	// Another instance already completed the reveal; this one observes the
	// persisted flag and jumps straight to done, ranking included.
	cfg, err := r.configs.Read()
	require.NoError(t, err)
	cfg.IsResultsRevealed = true
	require.NoError(t, r.configs.Write(*cfg))

	waitForState(t, r.orchestrator, StateDone)

	podium := r.orchestrator.Podium()
	require.NotEmpty(t, podium)
	assert.Equal(t, "Amy", podium[0].Name)
}

func TestResetReturnsDoneToIdle(t *testing.T) {
	r := newRig(t, map[string]int{"Amy": 1})

	require.NoError(t, r.orchestrator.Arm(true))
	waitForState(t, r.orchestrator, StateDone)

	reset := contest.DefaultConfig()
	reset.LastResetTimestamp = time.Now().UnixMilli()
	require.NoError(t, r.configs.Write(reset))

	waitForState(t, r.orchestrator, StateIdle)
	assert.Empty(t, r.orchestrator.Ranking(), "a reset clears the frozen ranking")
}
