package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/galawall-api/internal/domain/contest"
	"github.com/gravadigital/galawall-api/internal/engine"
	"github.com/gravadigital/galawall-api/internal/logger"
	"github.com/gravadigital/galawall-api/internal/reveal"
)

const streamHeartbeat = 15 * time.Second

// StreamHandler pushes live contest updates over Server-Sent Events. It rides
// the single long-lived server engine and the reveal orchestrator; every
// connected wall and results screen converges on the same snapshots without
// polling.
type StreamHandler struct {
	engine       *engine.Engine
	orchestrator *reveal.Orchestrator
	log          *log.Logger
}

// NewStreamHandler creates the SSE handler
func NewStreamHandler(eng *engine.Engine, orchestrator *reveal.Orchestrator) *StreamHandler {
	return &StreamHandler{
		engine:       eng,
		orchestrator: orchestrator,
		log:          logger.Handler("stream_handler"),
	}
}

// StreamEvent is one SSE payload. Vote counts and ranking appear only once
// the reveal has begun; before that the wall shows entries without numbers.
type StreamEvent struct {
	Participants      []WallEntry            `json:"participants"`
	Config            contest.ActivityConfig `json:"config"`
	RevealState       reveal.State           `json:"reveal_state"`
	Ranking           []contest.Participant  `json:"ranking,omitempty"`
	IsResultsRevealed bool                   `json:"is_results_revealed"`
}

// Stream handles GET /api/stream
func (h *StreamHandler) Stream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.String(http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Buffered so a slow client drops intermediate snapshots instead of
	// blocking the hubs.
	updates := make(chan struct{}, 1)
	notify := func() {
		select {
		case updates <- struct{}{}:
		default:
		}
	}

	unsubEngine := h.engine.Subscribe(func(engine.Projection) { notify() })
	defer unsubEngine()
	unsubReveal := h.orchestrator.Subscribe(func(reveal.State) { notify() })
	defer unsubReveal()

	h.log.Debug("stream opened", "remote_addr", c.ClientIP())

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	h.send(c, flusher)

	for {
		select {
		case <-c.Request.Context().Done():
			h.log.Debug("stream closed", "remote_addr", c.ClientIP())
			return
		case <-updates:
			h.send(c, flusher)
		case <-heartbeat.C:
			fmt.Fprint(c.Writer, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

func (h *StreamHandler) send(c *gin.Context, flusher http.Flusher) {
	snap := h.engine.Snapshot()
	state := h.orchestrator.State()

	event := StreamEvent{
		Config:            snap.Config,
		RevealState:       state,
		IsResultsRevealed: snap.Config.IsResultsRevealed,
	}

	revealed := snap.Config.IsResultsRevealed || state != reveal.StateIdle
	event.Participants = make([]WallEntry, 0, len(snap.Participants))
	for _, p := range snap.Participants {
		entry := WallEntry{
			ID:          p.ID,
			Name:        p.Name,
			Theme:       p.Theme,
			PhotoURL:    p.PhotoURL,
			EntryNumber: p.EntryNumber,
		}
		if revealed {
			votes := p.Votes
			entry.Votes = &votes
		}
		event.Participants = append(event.Participants, entry)
	}
	if revealed {
		event.Ranking = h.orchestrator.Ranking()
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to marshal stream event", "error", err)
		return
	}

	fmt.Fprintf(c.Writer, "event: contest\ndata: %s\n\n", data)
	flusher.Flush()
}
