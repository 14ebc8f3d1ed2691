package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fantasy/internal/frontend/handlers"
	"github.com/cory-johannsen/fantasy/internal/frontend/telnet"
	"github.com/cory-johannsen/fantasy/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host adventures over telnet, one per connection",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	start := time.Now()
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	game, closeGame, err := a.newGame(ctx)
	if err != nil {
		return err
	}
	defer closeGame()

	handler := handlers.NewGameHandler(game, a.cfg.Game.Color, a.logger)
	acceptor := telnet.NewAcceptor(a.cfg.Telnet, handler, a.logger)

	lifecycle := server.NewLifecycle(a.logger)
	lifecycle.Add("telnet", acceptor)

	a.logger.Info("fantasy server initialized",
		zap.String("telnet_addr", a.cfg.Telnet.Addr()),
		zap.String("storage", a.cfg.Storage.Driver),
		zap.Duration("startup", time.Since(start)),
	)
	return lifecycle.Run(ctx)
}
