package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/fantasy/internal/config"
	"github.com/cory-johannsen/fantasy/internal/frontend/telnet"
	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/dice"
	"github.com/cory-johannsen/fantasy/internal/game/session"
	"github.com/cory-johannsen/fantasy/internal/storage/memory"
	"github.com/cory-johannsen/fantasy/internal/testutil"
)

func startServer(t *testing.T) (*telnet.Acceptor, *memory.Store) {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	store := memory.New()
	require.NoError(t, store.SeedCatalog(context.Background(), cat))

	rules := session.DefaultRules()
	rules.Adventure.EncounterChancePct = 0
	rules.Adventure.BossEvery = 1000
	roller := dice.NewLoggedRoller(dice.NewSeededSource(7), zap.NewNop())
	game := session.NewGame(cat, store, roller, rules, session.NewManager(), zaptest.NewLogger(t))

	cfg := config.TelnetConfig{Host: "127.0.0.1", Port: 0, ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second}
	acc := telnet.NewAcceptor(cfg, NewGameHandler(game, false, zaptest.NewLogger(t)), zaptest.NewLogger(t))
	go func() {
		_ = acc.ListenAndServe()
	}()
	t.Cleanup(acc.Stop)
	require.Eventually(t, func() bool { return acc.IsRunning() && acc.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	return acc, store
}

func TestGameHandler_PlaysFullSession(t *testing.T) {
	acc, store := startServer(t)
	client := testutil.NewTelnetClient(t, acc.Addr())

	intro := client.Answer("Name of your hero: ", "Ayla", 2*time.Second)
	assert.Contains(t, intro, "Welcome, traveller.")
	assert.Contains(t, intro, "You travel alone today.")
	listing := client.Answer("Id of the chosen class: ", "4", 2*time.Second)
	assert.Contains(t, listing, "Odin's Fury")

	for i := 0; i < 37; i++ {
		client.Answer("(y/n) ", "y", 2*time.Second)
	}
	transcript := client.Transcript(5 * time.Second)
	assert.Contains(t, transcript, "Well done!")
	assert.Contains(t, transcript, "Your tale ends here (victory). Farewell.")

	saved, err := store.LatestCharacter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ayla", saved.Name)
	assert.Equal(t, 259, saved.Experience)
}

func TestGameHandler_DisconnectEndsSession(t *testing.T) {
	acc, _ := startServer(t)
	client := testutil.NewTelnetClient(t, acc.Addr())
	client.ReadUntil("Name of your hero: ", 2*time.Second)
	client.Close()

	require.Eventually(t, func() bool { return acc.ActiveSessions() == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestRoadLine(t *testing.T) {
	assert.Equal(t, "You travel alone today.", roadLine(nil))
	assert.Equal(t, "Also on the road: Ayla, Bran.", roadLine([]session.PlayerSession{
		{ID: "a", CharName: "Ayla"},
		{ID: "b"},
		{ID: "c", CharName: "Bran"},
	}))
}
