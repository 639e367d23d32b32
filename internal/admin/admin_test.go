package admin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gravadigital/galawall-api/internal/config"
	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/storage/memory"
)

const testPassphrase = "open-sesame"

type env struct {
	svc          *Service
	participants *memory.ParticipantStore
	configs      *memory.ConfigStore
	ballots      *memory.BallotStore
}

func newEnv(t *testing.T) *env {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassphrase), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Admin.PassphraseHash = string(hash)
	cfg.Admin.JWTSecret = "test-secret"
	cfg.Admin.TokenTTL = time.Hour

	participants := memory.NewParticipantStore()
	configs := memory.NewConfigStore()
	ballots := memory.NewBallotStore()

	return &env{
		svc:          NewService(cfg, configs, participants, ballots),
		participants: participants,
		configs:      configs,
		ballots:      ballots,
	}
}

func TestLoginAndVerify(t *testing.T) {
	e := newEnv(t)

	token, err := e.svc.Login(testPassphrase)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, e.svc.VerifyToken(token))
}

func TestLoginRejectsWrongPassphrase(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidPassphrase)
}

func TestVerifyRejectsGarbageToken(t *testing.T) {
	e := newEnv(t)

	assert.ErrorIs(t, e.svc.VerifyToken("not.a.token"), ErrInvalidToken)
}

func TestSetGatesCreatesConfigWhenAbsent(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.svc.SetVotingOpen(false))

	cfg, err := e.configs.Read()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.False(t, cfg.IsVotingOpen)
	assert.True(t, cfg.IsRegistrationOpen, "untouched fields keep their defaults")
}

func TestSetGatesPreservesOtherFields(t *testing.T) {
	e := newEnv(t)

	existing := contest.DefaultConfig()
	existing.LuckyDrawWinner = &contest.LuckyWinner{VoterBadge: "EMP1", VoterName: "Zoe"}
	require.NoError(t, e.configs.Write(existing))

	require.NoError(t, e.svc.SetRegistrationOpen(false))

	cfg, err := e.configs.Read()
	require.NoError(t, err)
	assert.False(t, cfg.IsRegistrationOpen)
	require.NotNil(t, cfg.LuckyDrawWinner, "a gate toggle must not clobber the winner")
	assert.Equal(t, "EMP1", cfg.LuckyDrawWinner.VoterBadge)
}

func TestDrawLuckyWinnerRequiresBallots(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.DrawLuckyWinner()
	assert.ErrorIs(t, err, contest.ErrNoBallots)
}

func TestDrawLuckyWinnerPicksFromPool(t *testing.T) {
	e := newEnv(t)

	p := contest.NewParticipant("Amy", "EMP1", "theme", "https://example.com/a.jpg")
	require.NoError(t, e.participants.Create(p))
	require.NoError(t, e.ballots.Append(contest.NewBallot(p.ID, contest.VoterInfo{Badge: "EMP9", Name: "Zoe"})))

	winner, err := e.svc.DrawLuckyWinner()
	require.NoError(t, err)
	assert.Equal(t, "EMP9", winner.VoterBadge)

	cfg, err := e.configs.Read()
	require.NoError(t, err)
	require.NotNil(t, cfg.LuckyDrawWinner)
	assert.Equal(t, "EMP9", cfg.LuckyDrawWinner.VoterBadge)
}

func TestResetWipesEverythingAndStampsTimestamp(t *testing.T) {
	e := newEnv(t)

	p := contest.NewParticipant("Amy", "EMP1", "theme", "https://example.com/a.jpg")
	require.NoError(t, e.participants.Create(p))
	require.NoError(t, e.ballots.Append(contest.NewBallot(p.ID, contest.VoterInfo{Badge: "EMP9", Name: "Zoe"})))

	revealed := contest.DefaultConfig()
	revealed.IsResultsRevealed = true
	revealed.LuckyDrawWinner = &contest.LuckyWinner{VoterBadge: "EMP9", VoterName: "Zoe"}
	require.NoError(t, e.configs.Write(revealed))

	before := time.Now().UnixMilli()
	require.NoError(t, e.svc.Reset())

	list, err := e.participants.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	ballots, err := e.ballots.ListAll()
	require.NoError(t, err)
	assert.Empty(t, ballots)

	cfg, err := e.configs.Read()
	require.NoError(t, err)
	assert.True(t, cfg.IsRegistrationOpen)
	assert.True(t, cfg.IsVotingOpen)
	assert.False(t, cfg.IsResultsRevealed)
	assert.Nil(t, cfg.LuckyDrawWinner)
	assert.GreaterOrEqual(t, cfg.LastResetTimestamp, before, "the reset stamp is how clients learn to re-arm")
}

func TestGetStats(t *testing.T) {
	e := newEnv(t)

	p := contest.NewParticipant("Amy", "EMP1", "theme", "https://example.com/a.jpg")
	require.NoError(t, e.participants.Create(p))
	require.NoError(t, e.participants.IncrementVote(p.ID, 3))
	require.NoError(t, e.ballots.Append(contest.NewBallot(p.ID, contest.VoterInfo{Badge: "EMP9", Name: "Zoe"})))

	stats, err := e.svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Participants)
	assert.Equal(t, 3, stats.TotalVotes)
	assert.Equal(t, 1, stats.Ballots)
}

func TestSimulateParticipantBypassesGate(t *testing.T) {
	e := newEnv(t)

	closed := contest.DefaultConfig()
	closed.IsRegistrationOpen = false
	require.NoError(t, e.configs.Write(closed))

	p, err := e.svc.SimulateParticipant()
	require.NoError(t, err)
	assert.Equal(t, 1, p.EntryNumber)
}

func TestSimulateVotesSpreadsAcrossParticipants(t *testing.T) {
	e := newEnv(t)

	for _, name := range []string{"Amy", "Bo"} {
		require.NoError(t, e.participants.Create(contest.NewParticipant(name, "B-"+name, "theme", "https://example.com/"+name+".jpg")))
	}

	require.NoError(t, e.svc.SimulateVotes(10))

	list, err := e.participants.List()
	require.NoError(t, err)
	assert.Equal(t, 10, contest.TotalVotes(list))
}
