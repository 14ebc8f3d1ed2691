// Package handlers adapts transports to game sessions.
package handlers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fantasy/internal/frontend/console"
	"github.com/cory-johannsen/fantasy/internal/frontend/telnet"
	"github.com/cory-johannsen/fantasy/internal/game/session"
)

const banner = "Welcome, traveller. A long road lies ahead."

// GameHandler plays one game session per telnet connection.
type GameHandler struct {
	game   *session.Game
	color  bool
	logger *zap.Logger
}

// NewGameHandler returns a telnet.SessionHandler backed by game.
//
// Precondition: game and logger must be non-nil.
func NewGameHandler(game *session.Game, color bool, logger *zap.Logger) *GameHandler {
	return &GameHandler{game: game, color: color, logger: logger}
}

// HandleSession runs character creation and the adventure over conn.
//
// Postcondition: Returns nil once the adventure ends in victory or defeat.
func (h *GameHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	addr := conn.RemoteAddr().String()
	p := console.NewPrompter(conn,
		console.WithColor(h.color),
		console.WithLogger(h.logger.With(zap.String("remote_addr", addr))),
	)

	p.Narrate(banner)
	p.Narrate(roadLine(h.game.Sessions().List()))

	summary, err := h.game.Play(ctx, p, session.Options{RemoteAddr: addr})
	if err != nil {
		return fmt.Errorf("playing session for %s: %w", addr, err)
	}
	p.Narrate(fmt.Sprintf("Your tale ends here (%s). Farewell.", summary.State))
	h.logger.Info("telnet session finished",
		zap.String("remote_addr", addr),
		zap.Stringer("state", summary.State),
		zap.Int("still_playing", h.game.Sessions().Count()),
	)
	return nil
}

// roadLine names the heroes already playing, oldest session first.
func roadLine(running []session.PlayerSession) string {
	var names []string
	for _, sess := range running {
		if sess.CharName != "" {
			names = append(names, sess.CharName)
		}
	}
	if len(names) == 0 {
		return "You travel alone today."
	}
	return "Also on the road: " + strings.Join(names, ", ") + "."
}

var _ telnet.SessionHandler = (*GameHandler)(nil)
