package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/galawall-api/internal/admin"
	"github.com/gravadigital/galawall-api/internal/logger"
	"github.com/gravadigital/galawall-api/internal/response"
	"github.com/gravadigital/galawall-api/internal/reveal"
)

// AdminHandler serves the admin control panel endpoints. Everything except
// Login sits behind the admin token middleware.
type AdminHandler struct {
	svc          *admin.Service
	orchestrator *reveal.Orchestrator
	log          *log.Logger
}

// NewAdminHandler creates the admin handler
func NewAdminHandler(svc *admin.Service, orchestrator *reveal.Orchestrator) *AdminHandler {
	return &AdminHandler{
		svc:          svc,
		orchestrator: orchestrator,
		log:          logger.Handler("admin_handler"),
	}
}

type LoginRequest struct {
	Passphrase string `json:"passphrase" binding:"required"`
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "passphrase is required")
		return
	}

	token, err := h.svc.Login(req.Passphrase)
	if err != nil {
		if errors.Is(err, admin.ErrInvalidPassphrase) {
			response.UnauthorizedError(c, "invalid passphrase")
			return
		}
		h.log.Error("admin login failed", "error", err)
		response.InternalServerError(c, "login failed")
		return
	}

	response.SuccessResponse(c, http.StatusOK, "login successful", gin.H{"token": token})
}

type UpdateConfigRequest struct {
	IsRegistrationOpen *bool `json:"is_registration_open"`
	IsVotingOpen       *bool `json:"is_voting_open"`
}

// UpdateConfig handles PATCH /api/admin/config. Only the gates are settable
// here; the revealed flag and reset timestamp belong to the reveal and reset
// flows.
func (h *AdminHandler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "invalid request body: "+err.Error())
		return
	}
	if req.IsRegistrationOpen == nil && req.IsVotingOpen == nil {
		response.BadRequestError(c, "no settable fields in request")
		return
	}

	if req.IsRegistrationOpen != nil {
		if err := h.svc.SetRegistrationOpen(*req.IsRegistrationOpen); err != nil {
			response.DomainError(c, err)
			return
		}
	}
	if req.IsVotingOpen != nil {
		if err := h.svc.SetVotingOpen(*req.IsVotingOpen); err != nil {
			response.DomainError(c, err)
			return
		}
	}

	response.SuccessResponse(c, http.StatusOK, "config updated", nil)
}

// ArmReveal handles POST /api/admin/reveal. The token middleware already
// authenticated this caller, satisfying the admin-session precondition.
func (h *AdminHandler) ArmReveal(c *gin.Context) {
	if err := h.orchestrator.Arm(true); err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusAccepted, "reveal sequence armed", gin.H{
		"state": h.orchestrator.State(),
	})
}

// GetReveal handles GET /api/admin/reveal
func (h *AdminHandler) GetReveal(c *gin.Context) {
	response.SuccessResponse(c, http.StatusOK, "", gin.H{
		"state":   h.orchestrator.State(),
		"ranking": h.orchestrator.Ranking(),
		"podium":  h.orchestrator.Podium(),
	})
}

// DrawLuckyWinner handles POST /api/admin/draw
func (h *AdminHandler) DrawLuckyWinner(c *gin.Context) {
	winner, err := h.svc.DrawLuckyWinner()
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "lucky winner drawn", winner)
}

// Reset handles POST /api/admin/reset
func (h *AdminHandler) Reset(c *gin.Context) {
	if err := h.svc.Reset(); err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "contest reset", nil)
}

// GetStats handles GET /api/admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.svc.GetStats()
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", stats)
}

// SimulateParticipant handles POST /api/admin/simulate/participant
func (h *AdminHandler) SimulateParticipant(c *gin.Context) {
	p, err := h.svc.SimulateParticipant()
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "demo participant created", p)
}

type SimulateVotesRequest struct {
	Count int `json:"count" binding:"required,min=1,max=1000"`
}

// SimulateVotes handles POST /api/admin/simulate/votes
func (h *AdminHandler) SimulateVotes(c *gin.Context) {
	var req SimulateVotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequestError(c, "count must be between 1 and 1000")
		return
	}

	if err := h.svc.SimulateVotes(req.Count); err != nil {
		response.DomainError(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "votes simulated", gin.H{"count": req.Count})
}
