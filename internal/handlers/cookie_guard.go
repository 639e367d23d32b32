package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/galawall-api/internal/guard"
)

// Cookie names for the per-browser vote guard.
const (
	votedCookie = "gw_voted"
	resetCookie = "gw_reset"
)

const cookieMaxAge = 60 * 60 * 24 * 30

// cookieGuard persists the vote guard in the voter's browser cookies. Each
// request reads the marker from the request cookies and writes updates back
// onto the response, giving every browser its own guard without server-side
// session state.
type cookieGuard struct {
	c *gin.Context
}

// newCookieGuard binds a guard store to one request/response pair
func newCookieGuard(c *gin.Context) guard.Store {
	return &cookieGuard{c: c}
}

func (g *cookieGuard) Get() (guard.State, error) {
	var state guard.State

	if v, err := g.c.Cookie(votedCookie); err == nil && v == "1" {
		state.Voted = true
	}
	if v, err := g.c.Cookie(resetCookie); err == nil {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			state.LastReset = ms
		}
	}
	return state, nil
}

func (g *cookieGuard) Set(state guard.State) error {
	voted := "0"
	if state.Voted {
		voted = "1"
	}
	g.c.SetCookie(votedCookie, voted, cookieMaxAge, "/", "", false, true)
	g.c.SetCookie(resetCookie, strconv.FormatInt(state.LastReset, 10), cookieMaxAge, "/", "", false, true)
	return nil
}

func (g *cookieGuard) Clear() error {
	g.c.SetCookie(votedCookie, "", -1, "/", "", false, true)
	g.c.SetCookie(resetCookie, "", -1, "/", "", false, true)
	return nil
}
