package telnet

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fantasy/internal/config"
)

// crowdedMessage is sent to a client turned away because every seat is taken.
const crowdedMessage = "The inn is full tonight, traveller. Try again later."

// SessionHandler plays one game session over a connected client.
// ctx is cancelled when the acceptor stops and the connection is closed with it,
// so a pending ReadLine returns.
type SessionHandler interface {
	HandleSession(ctx context.Context, conn *Conn) error
}

// Acceptor hands every incoming Telnet connection its own game session.
type Acceptor struct {
	cfg     config.TelnetConfig
	handler SessionHandler
	logger  *zap.Logger

	// ctx is cancelled by Stop and parents every session context.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	conns    map[*Conn]struct{}
	sessions sync.WaitGroup
}

// NewAcceptor creates a Telnet acceptor with the given configuration.
//
// Precondition: cfg must have a valid port; handler and logger must be non-nil.
func NewAcceptor(cfg config.TelnetConfig, handler SessionHandler, logger *zap.Logger) *Acceptor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Acceptor{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		conns:   make(map[*Conn]struct{}),
	}
}

// Start runs ListenAndServe so an Acceptor can be handed to server.Lifecycle.
func (a *Acceptor) Start() error { return a.ListenAndServe() }

// ListenAndServe listens on the configured address and serves sessions until Stop.
//
// Precondition: The acceptor has not been started before.
// Postcondition: Returns nil after Stop; the listener is closed.
func (a *Acceptor) ListenAndServe() error {
	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	switch {
	case a.ctx.Err() != nil:
		a.mu.Unlock()
		listener.Close()
		return nil
	case a.listener != nil:
		a.mu.Unlock()
		listener.Close()
		return errors.New("telnet acceptor already running")
	}
	a.listener = listener
	a.mu.Unlock()

	a.logger.Info("telnet acceptor listening",
		zap.String("addr", listener.Addr().String()),
		zap.Int("max_sessions", a.cfg.MaxSessions),
	)

	for {
		raw, err := listener.Accept()
		if err != nil {
			if a.ctx.Err() != nil {
				return nil
			}
			a.logger.Error("accepting connection", zap.Error(err))
			continue
		}

		conn := NewConn(raw, a.cfg.ReadTimeout, a.cfg.WriteTimeout)
		if !a.seat(conn) {
			a.turnAway(conn)
			continue
		}
		go a.serve(conn)
	}
}

// seat registers conn as a live session unless the acceptor is full or stopping.
func (a *Acceptor) seat(conn *Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.ctx.Err() != nil {
		return false
	}
	if a.cfg.MaxSessions > 0 && len(a.conns) >= a.cfg.MaxSessions {
		return false
	}
	a.conns[conn] = struct{}{}
	a.sessions.Add(1)
	return true
}

func (a *Acceptor) unseat(conn *Conn) {
	a.mu.Lock()
	delete(a.conns, conn)
	a.mu.Unlock()
	a.sessions.Done()
}

func (a *Acceptor) turnAway(conn *Conn) {
	a.logger.Warn("turning player away",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.Int("max_sessions", a.cfg.MaxSessions),
	)
	_ = conn.WriteLine(crowdedMessage)
	_ = conn.Close()
}

func (a *Acceptor) serve(conn *Conn) {
	defer a.unseat(conn)
	defer conn.Close()

	start := time.Now()
	addr := conn.RemoteAddr().String()
	a.logger.Info("player connected", zap.String("remote_addr", addr))

	if err := conn.Negotiate(); err != nil {
		a.logger.Warn("telnet negotiation failed", zap.String("remote_addr", addr), zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()

	err := a.handler.HandleSession(ctx, conn)
	fields := []zap.Field{
		zap.String("remote_addr", addr),
		zap.Duration("duration", time.Since(start)),
	}
	switch {
	case err == nil:
		a.logger.Info("player left", fields...)
	case a.ctx.Err() != nil:
		a.logger.Info("player dropped at shutdown", fields...)
	default:
		a.logger.Debug("session ended", append(fields, zap.Error(err))...)
	}
}

// Stop closes the listener and every live connection, then waits for the
// sessions to return. Calling Stop more than once is safe.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if a.ctx.Err() != nil {
		a.mu.Unlock()
		return
	}
	a.cancel()
	if a.listener != nil {
		a.listener.Close()
	}
	dropped := len(a.conns)
	for conn := range a.conns {
		_ = conn.Close()
	}
	a.mu.Unlock()

	a.sessions.Wait()
	a.logger.Info("telnet acceptor stopped", zap.Int("dropped_sessions", dropped))
}

// Addr returns the listening address, or "" before the listener is up.
func (a *Acceptor) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// ActiveSessions returns the number of sessions currently being played.
func (a *Acceptor) ActiveSessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.conns)
}

// IsRunning reports whether the acceptor is accepting connections.
func (a *Acceptor) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listener != nil && a.ctx.Err() == nil
}
