// Package admin implements the admin control surface: the shared-passphrase
// session, the config toggles, the prize draw, and the irreversible reset.
package admin

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/gravadigital/galawall-api/internal/config"
	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/logger"
	"github.com/gravadigital/galawall-api/internal/storage"
)

// ErrInvalidPassphrase rejects a login with the wrong shared passphrase.
var ErrInvalidPassphrase = errors.New("invalid admin passphrase")

// ErrInvalidToken rejects an expired or malformed admin token.
var ErrInvalidToken = errors.New("invalid admin token")

// Service is the admin control surface. It contains no coordination logic of
// its own; every config mutation goes through updateConfig, the single write
// path.
type Service struct {
	cfg          *config.Config
	configs      storage.ConfigStore
	participants storage.ParticipantStore
	ballots      storage.BallotStore
	log          *log.Logger
}

// NewService creates the admin service
func NewService(cfg *config.Config, configs storage.ConfigStore, participants storage.ParticipantStore, ballots storage.BallotStore) *Service {
	return &Service{
		cfg:          cfg,
		configs:      configs,
		participants: participants,
		ballots:      ballots,
		log:          logger.Service("admin"),
	}
}

// Login verifies the shared passphrase and mints a short-lived admin token.
// There is no per-admin identity; every admin shares the one passphrase.
func (s *Service) Login(passphrase string) (string, error) {
	if s.cfg.Admin.PassphraseHash == "" {
		return "", errors.New("admin passphrase is not configured")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.Admin.PassphraseHash), []byte(passphrase)); err != nil {
		s.log.Warn("admin login rejected")
		return "", ErrInvalidPassphrase
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.Admin.TokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Admin.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign admin token: %w", err)
	}

	s.log.Info("admin session opened", "ttl", s.cfg.Admin.TokenTTL)
	return token, nil
}

// VerifyToken checks an admin token signature and expiry.
func (s *Service) VerifyToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Admin.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// SetRegistrationOpen toggles the registration gate.
func (s *Service) SetRegistrationOpen(open bool) error {
	return s.updateConfig(func(cfg *contest.ActivityConfig) {
		cfg.IsRegistrationOpen = open
	})
}

// SetVotingOpen toggles the voting gate.
func (s *Service) SetVotingOpen(open bool) error {
	return s.updateConfig(func(cfg *contest.ActivityConfig) {
		cfg.IsVotingOpen = open
	})
}

// DrawLuckyWinner uniformly samples one ballot from the entire pool and
// records its voter as the prize winner. Usable independently of the main
// reveal; rejected when no ballots exist.
func (s *Service) DrawLuckyWinner() (*contest.LuckyWinner, error) {
	ballots, err := s.ballots.ListAll()
	if err != nil {
		return nil, fmt.Errorf("%w: listing ballots: %v", contest.ErrStoreUnavailable, err)
	}
	if len(ballots) == 0 {
		return nil, contest.ErrNoBallots
	}

	picked := ballots[rand.Intn(len(ballots))]
	winner := &contest.LuckyWinner{
		VoterBadge: picked.VoterBadge,
		VoterName:  picked.VoterName,
	}

	if err := s.updateConfig(func(cfg *contest.ActivityConfig) {
		cfg.LuckyDrawWinner = winner
	}); err != nil {
		return nil, err
	}

	s.log.Info("lucky winner drawn", "voter_badge", winner.VoterBadge, "pool_size", len(ballots))
	return winner, nil
}

// Reset irreversibly deletes every participant and ballot and overwrites the
// config with the defaults, stamped with a fresh reset timestamp. That stamp
// is the sole mechanism by which connected clients learn to re-arm their
// vote guards; the lucky winner is cleared with everything else.
func (s *Service) Reset() error {
	if err := s.participants.DeleteAll(); err != nil {
		return fmt.Errorf("%w: deleting participants: %v", contest.ErrStoreUnavailable, err)
	}
	if err := s.ballots.DeleteAll(); err != nil {
		return fmt.Errorf("%w: deleting ballots: %v", contest.ErrStoreUnavailable, err)
	}

	cfg := contest.DefaultConfig()
	cfg.LastResetTimestamp = time.Now().UnixMilli()
	if err := s.configs.Write(cfg); err != nil {
		return fmt.Errorf("%w: writing config: %v", contest.ErrStoreUnavailable, err)
	}

	s.log.Info("contest reset", "last_reset_timestamp", cfg.LastResetTimestamp)
	return nil
}

// Stats summarizes the contest for the admin dashboard.
type Stats struct {
	Participants int `json:"participants"`
	TotalVotes   int `json:"total_votes"`
	Ballots      int `json:"ballots"`
}

// GetStats returns participant, vote and ballot totals.
func (s *Service) GetStats() (*Stats, error) {
	list, err := s.participants.List()
	if err != nil {
		return nil, fmt.Errorf("%w: listing participants: %v", contest.ErrStoreUnavailable, err)
	}
	ballots, err := s.ballots.ListAll()
	if err != nil {
		return nil, fmt.Errorf("%w: listing ballots: %v", contest.ErrStoreUnavailable, err)
	}

	return &Stats{
		Participants: len(list),
		TotalVotes:   contest.TotalVotes(list),
		Ballots:      len(ballots),
	}, nil
}

// updateConfig is the single config write path: read (absent means default),
// mutate, full replace. Never poke fields ad hoc.
func (s *Service) updateConfig(mutate func(*contest.ActivityConfig)) error {
	current, err := s.configs.Read()
	if err != nil {
		return fmt.Errorf("%w: reading config: %v", contest.ErrStoreUnavailable, err)
	}

	cfg := contest.DefaultConfig()
	if current != nil {
		cfg = *current
	}
	mutate(&cfg)

	if err := s.configs.Write(cfg); err != nil {
		return fmt.Errorf("%w: writing config: %v", contest.ErrStoreUnavailable, err)
	}
	return nil
}

var demoNames = []string{"Daniela", "Marcos", "Valentina", "Julián", "Camila", "Federico", "Sofía"}
var demoThemes = []string{"gala nocturna", "retro jazz", "neón futurista", "bosque encantado", "verano tropical", "cine clásico", "carnaval"}

// SimulateParticipant registers a random demo participant, bypassing the
// registration gate. Demo tooling for rehearsals only.
func (s *Service) SimulateParticipant() (*contest.Participant, error) {
	list, err := s.participants.List()
	if err != nil {
		return nil, fmt.Errorf("%w: listing participants: %v", contest.ErrStoreUnavailable, err)
	}

	p := contest.NewParticipant(
		fmt.Sprintf("%s %d", demoNames[rand.Intn(len(demoNames))], len(list)+1),
		fmt.Sprintf("EMP%04d", rand.Intn(10000)),
		demoThemes[rand.Intn(len(demoThemes))],
		fmt.Sprintf("https://picsum.photos/seed/%d/600/600", rand.Int63()),
	)
	if err := s.participants.Create(p); err != nil {
		return nil, fmt.Errorf("%w: creating participant: %v", contest.ErrStoreUnavailable, err)
	}
	return p, nil
}

// SimulateVotes spreads n random votes across the current participants.
func (s *Service) SimulateVotes(n int) error {
	list, err := s.participants.List()
	if err != nil {
		return fmt.Errorf("%w: listing participants: %v", contest.ErrStoreUnavailable, err)
	}
	if len(list) == 0 {
		return contest.ErrUnknownParticipant
	}

	for i := 0; i < n; i++ {
		target := list[rand.Intn(len(list))]
		if err := s.participants.IncrementVote(target.ID, 1); err != nil {
			return fmt.Errorf("%w: incrementing vote: %v", contest.ErrStoreUnavailable, err)
		}
	}
	return nil
}
