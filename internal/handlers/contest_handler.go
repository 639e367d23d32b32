// Package handlers exposes the HTTP surface: the public contest endpoints,
// the admin control panel and the live event stream.
package handlers

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/engine"
	"github.com/gravadigital/galawall-api/internal/logger"
	"github.com/gravadigital/galawall-api/internal/response"
	"github.com/gravadigital/galawall-api/internal/storage"
	"github.com/gravadigital/galawall-api/internal/storage/object"
	"github.com/gravadigital/galawall-api/internal/validation"
	"github.com/gravadigital/galawall-api/internal/voting"
)

// ContestHandler serves the voter-facing endpoints. Each request gets its own
// reconciliation engine seeded from the caller's cookie guard, so vote state
// is judged per browser, exactly once per reset epoch.
type ContestHandler struct {
	participants storage.ParticipantStore
	configs      storage.ConfigStore
	ballots      storage.BallotStore
	photos       *object.PhotoStore
	validate     validation.ParticipantValidation
	log          *log.Logger
}

// NewContestHandler creates the voter-facing handler. photos may be nil when
// object storage is not configured; data URL photos are then rejected.
func NewContestHandler(participants storage.ParticipantStore, configs storage.ConfigStore, ballots storage.BallotStore, photos *object.PhotoStore) *ContestHandler {
	return &ContestHandler{
		participants: participants,
		configs:      configs,
		ballots:      ballots,
		photos:       photos,
		log:          logger.Handler("contest_handler"),
	}
}

// requestEngine builds an engine for this request, seeded from the caller's
// cookies and loaded synchronously from the stores.
func (h *ContestHandler) requestEngine(c *gin.Context) (*engine.Engine, error) {
	eng := engine.New(newCookieGuard(c))
	if err := eng.Load(h.participants, h.configs); err != nil {
		return nil, err
	}
	return eng, nil
}

type RegisterParticipantRequest struct {
	Name  string `json:"name" binding:"required"`
	Badge string `json:"badge" binding:"required"`
	Theme string `json:"theme" binding:"required"`
	Photo string `json:"photo" binding:"required"`
}

// RegisterParticipant handles POST /api/participants
func (h *ContestHandler) RegisterParticipant(c *gin.Context) {
	var req RegisterParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.validate.ValidateName(req.Name); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := h.validate.ValidateBadge(req.Badge); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := h.validate.ValidateTheme(req.Theme); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	if err := h.validate.ValidatePhoto(req.Photo); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}

	photoURL := req.Photo
	if strings.HasPrefix(req.Photo, "data:") {
		if h.photos == nil {
			response.BadRequestError(c, "photo uploads are not enabled, provide a public URL")
			return
		}
		uploaded, err := h.photos.UploadDataURL(c.Request.Context(), req.Photo)
		if err != nil {
			h.log.Error("photo upload failed", "error", err)
			response.InternalServerError(c, "failed to store photo")
			return
		}
		photoURL = uploaded
	}

	eng, err := h.requestEngine(c)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	coordinator := voting.NewCoordinator(eng, h.participants, h.ballots)
	p, err := coordinator.RegisterParticipant(req.Name, req.Badge, req.Theme, photoURL)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "participant registered", p)
}

type CastVoteRequest struct {
	VoterBadge string `json:"voter_badge"`
	VoterName  string `json:"voter_name"`
}

// CastVote handles POST /api/participants/:id/vote
func (h *ContestHandler) CastVote(c *gin.Context) {
	idParam := c.Param("id")
	if err := validation.ValidateUUID(idParam, "participant id"); err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	participantID := uuid.MustParse(idParam)

	// Voter identity is optional; without it the vote still counts but no
	// ballot enters the prize draw pool.
	var req CastVoteRequest
	_ = c.ShouldBindJSON(&req)

	var voter *contest.VoterInfo
	if req.VoterBadge != "" {
		voter = &contest.VoterInfo{Badge: req.VoterBadge, Name: req.VoterName}
	}

	eng, err := h.requestEngine(c)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	coordinator := voting.NewCoordinator(eng, h.participants, h.ballots)
	if err := coordinator.CastVote(participantID, voter); err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "vote cast", gin.H{
		"participant_id": participantID,
		"has_voted":      true,
	})
}

// WallEntry is a participant as shown on the public wall. Vote counts stay
// hidden until the results are revealed.
type WallEntry struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Theme       string    `json:"theme"`
	PhotoURL    string    `json:"photo_url"`
	EntryNumber int       `json:"entry_number"`
	Votes       *int      `json:"votes,omitempty"`
}

// GetWall handles GET /api/participants
func (h *ContestHandler) GetWall(c *gin.Context) {
	eng, err := h.requestEngine(c)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	snap := eng.Snapshot()
	entries := make([]WallEntry, 0, len(snap.Participants))
	for _, p := range snap.Participants {
		entry := WallEntry{
			ID:          p.ID,
			Name:        p.Name,
			Theme:       p.Theme,
			PhotoURL:    p.PhotoURL,
			EntryNumber: p.EntryNumber,
		}
		if snap.Config.IsResultsRevealed {
			votes := p.Votes
			entry.Votes = &votes
		}
		entries = append(entries, entry)
	}

	response.SuccessResponse(c, http.StatusOK, "", gin.H{
		"participants":        entries,
		"is_results_revealed": snap.Config.IsResultsRevealed,
	})
}

// GetState handles GET /api/state. It returns the full reconciled projection
// for this caller, including their per-browser voted flag.
func (h *ContestHandler) GetState(c *gin.Context) {
	eng, err := h.requestEngine(c)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", eng.Snapshot())
}
