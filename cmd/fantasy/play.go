package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/fantasy/internal/frontend/console"
	"github.com/cory-johannsen/fantasy/internal/game/session"
)

var playContinue bool

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play an adventure in this terminal",
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playContinue, "continue", false, "resume the most recently created hero")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	game, closeGame, err := a.newGame(ctx)
	if err != nil {
		return err
	}
	defer closeGame()

	p := console.NewPrompter(console.NewStdio(cmd.InOrStdin(), cmd.OutOrStdout()),
		console.WithColor(a.cfg.Game.Color),
		console.WithLogger(a.logger),
	)
	_, err = game.Play(ctx, p, session.Options{Continue: playContinue})
	if errors.Is(err, context.Canceled) {
		p.Narrate("Adventure interrupted.")
		return nil
	}
	return err
}
