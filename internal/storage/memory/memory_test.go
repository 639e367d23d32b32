package memory

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
)

func newParticipant(name string) *contest.Participant {
	return contest.NewParticipant(name, "B-"+name, "theme", "https://example.com/"+name+".jpg")
}

func TestParticipantStoreAssignsDenseEntryNumbers(t *testing.T) {
	store := NewParticipantStore()

	for i, name := range []string{"Amy", "Bo", "Cleo"} {
		p := newParticipant(name)
		require.NoError(t, store.Create(p))
		assert.Equal(t, i+1, p.EntryNumber, "entry numbers must be dense and start at 1")
	}
}

func TestParticipantStoreConcurrentIncrements(t *testing.T) {
	store := NewParticipantStore()
	p := newParticipant("Amy")
	require.NoError(t, store.Create(p))

	const voters = 40
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.IncrementVote(p.ID, 1))
		}()
	}
	wg.Wait()

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, voters, list[0].Votes, "every concurrent vote must land")
}

func TestParticipantStoreIncrementUnknownID(t *testing.T) {
	store := NewParticipantStore()
	err := store.IncrementVote(uuid.New(), 1)
	assert.Error(t, err)
}

func TestParticipantStoreSubscribeReceivesSnapshots(t *testing.T) {
	store := NewParticipantStore()

	var snapshots [][]contest.Participant
	store.Subscribe(func(list []contest.Participant) {
		snapshots = append(snapshots, list)
	})

	require.NoError(t, store.Create(newParticipant("Amy")))
	require.NoError(t, store.Create(newParticipant("Bo")))

	require.Len(t, snapshots, 2)
	assert.Len(t, snapshots[0], 1)
	assert.Len(t, snapshots[1], 2)
}

func TestConfigStoreReadAbsentReturnsNil(t *testing.T) {
	store := NewConfigStore()

	cfg, err := store.Read()
	require.NoError(t, err)
	assert.Nil(t, cfg, "absent config must read as nil, not as an error")
}

func TestConfigStoreWriteIsFullReplace(t *testing.T) {
	store := NewConfigStore()

	first := contest.DefaultConfig()
	first.LuckyDrawWinner = &contest.LuckyWinner{VoterBadge: "EMP1", VoterName: "Amy"}
	require.NoError(t, store.Write(first))

	second := contest.DefaultConfig()
	second.IsVotingOpen = false
	require.NoError(t, store.Write(second))

	got, err := store.Read()
	require.NoError(t, err)
	assert.False(t, got.IsVotingOpen)
	assert.Nil(t, got.LuckyDrawWinner, "a full replace must drop fields absent from the new value")
}

func TestBallotStoreAppendAndWipe(t *testing.T) {
	store := NewBallotStore()

	id := uuid.New()
	require.NoError(t, store.Append(contest.NewBallot(id, contest.VoterInfo{Badge: "EMP1", Name: "Amy"})))
	require.NoError(t, store.Append(contest.NewBallot(id, contest.VoterInfo{Badge: "EMP2", Name: "Bo"})))

	ballots, err := store.ListAll()
	require.NoError(t, err)
	assert.Len(t, ballots, 2)

	require.NoError(t, store.DeleteAll())
	ballots, err = store.ListAll()
	require.NoError(t, err)
	assert.Empty(t, ballots)
}
