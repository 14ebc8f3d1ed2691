package telnet_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/fantasy/internal/config"
	"github.com/cory-johannsen/fantasy/internal/frontend/handlers"
	"github.com/cory-johannsen/fantasy/internal/frontend/telnet"
	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/dice"
	"github.com/cory-johannsen/fantasy/internal/game/session"
	"github.com/cory-johannsen/fantasy/internal/storage/memory"
	"github.com/cory-johannsen/fantasy/internal/testutil"
)

// inn runs an acceptor serving real game sessions from an in-memory store.
type inn struct {
	acc   *telnet.Acceptor
	game  *session.Game
	store *memory.Store
	done  chan error
}

func openInn(t *testing.T, maxSessions int) *inn {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	store := memory.New()
	require.NoError(t, store.SeedCatalog(context.Background(), cat))

	rules := session.DefaultRules()
	rules.Adventure.EncounterChancePct = 0
	rules.Adventure.BossEvery = 1000
	roller := dice.NewLoggedRoller(dice.NewSeededSource(11), zap.NewNop())
	game := session.NewGame(cat, store, roller, rules, session.NewManager(), zaptest.NewLogger(t))

	cfg := config.TelnetConfig{
		Host:         "127.0.0.1",
		Port:         0,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		MaxSessions:  maxSessions,
	}
	acc := telnet.NewAcceptor(cfg, handlers.NewGameHandler(game, false, zaptest.NewLogger(t)), zaptest.NewLogger(t))

	in := &inn{acc: acc, game: game, store: store, done: make(chan error, 1)}
	go func() {
		in.done <- acc.Start()
	}()
	t.Cleanup(acc.Stop)
	require.Eventually(t, func() bool { return acc.IsRunning() && acc.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	return in
}

// createHero answers the opening prompts and waits for the first step of the road.
func createHero(c *testutil.TelnetClient, name string) {
	c.Answer("Name of your hero: ", name, 2*time.Second)
	c.Answer("Id of the chosen class: ", "1", 2*time.Second)
	c.ReadUntil("(y/n) ", 2*time.Second)
}

func TestAcceptorStartAndStop(t *testing.T) {
	in := openInn(t, 0)
	client := testutil.NewTelnetClient(t, in.acc.Addr())
	intro := client.ReadUntil("Name of your hero: ", 2*time.Second)
	assert.Contains(t, intro, "Welcome, traveller.")
	require.Eventually(t, func() bool { return in.acc.ActiveSessions() == 1 }, 2*time.Second, 10*time.Millisecond)

	in.acc.Stop()

	select {
	case err := <-in.done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("acceptor did not stop in time")
	}
	assert.False(t, in.acc.IsRunning())
	assert.Equal(t, 0, in.acc.ActiveSessions())
	assert.Equal(t, 0, in.game.Sessions().Count())
}

func TestAcceptorServesPlayersSideBySide(t *testing.T) {
	in := openInn(t, 0)

	names := []string{"Ayla", "Bran", "Cyr"}
	for _, name := range names {
		createHero(testutil.NewTelnetClient(t, in.acc.Addr()), name)
	}

	assert.Equal(t, len(names), in.acc.ActiveSessions())
	var playing []string
	for _, s := range in.game.Sessions().List() {
		playing = append(playing, s.CharName)
	}
	sort.Strings(playing)
	assert.Equal(t, names, playing)

	late := testutil.NewTelnetClient(t, in.acc.Addr())
	intro := late.ReadUntil("Name of your hero: ", 2*time.Second)
	assert.Contains(t, intro, "Also on the road: Ayla, Bran, Cyr.")
}

func TestAcceptorTurnsAwayPastCapacity(t *testing.T) {
	in := openInn(t, 1)
	first := testutil.NewTelnetClient(t, in.acc.Addr())
	first.ReadUntil("Name of your hero: ", 2*time.Second)

	second := testutil.NewTelnetClient(t, in.acc.Addr())
	out := second.Transcript(2 * time.Second)
	assert.Contains(t, out, "The inn is full tonight")
	assert.NotContains(t, out, "Name of your hero")
	assert.Equal(t, 1, in.acc.ActiveSessions())

	first.Close()
	require.Eventually(t, func() bool { return in.acc.ActiveSessions() == 0 }, 5*time.Second, 20*time.Millisecond)

	third := testutil.NewTelnetClient(t, in.acc.Addr())
	third.ReadUntil("Name of your hero: ", 2*time.Second)
}

func TestAcceptorStopUnblocksWaitingPlayers(t *testing.T) {
	in := openInn(t, 0)
	var clients []*testutil.TelnetClient
	for i := 0; i < 2; i++ {
		c := testutil.NewTelnetClient(t, in.acc.Addr())
		createHero(c, fmt.Sprintf("Hero%d", i))
		clients = append(clients, c)
	}

	stopped := make(chan struct{})
	go func() {
		in.acc.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("stop blocked on players waiting at a prompt")
	}

	for _, c := range clients {
		c.Transcript(2 * time.Second)
	}
	assert.Equal(t, 0, in.acc.ActiveSessions())
	assert.Equal(t, 0, in.game.Sessions().Count())
}
