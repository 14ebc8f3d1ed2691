// Package console renders a game session over any line-oriented terminal.
package console

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fantasy/internal/game/combat"
)

// LineIO is a line-oriented terminal. telnet.Conn and Stdio implement it.
type LineIO interface {
	ReadLine() (string, error)
	WriteLine(text string) error
	WritePrompt(prompt string) error
}

// Prompter asks the player for input and prints narration. It satisfies
// combat.ActionSource, combat.Narrator, adventure.Prompter and creation.LineAsker.
type Prompter struct {
	term   LineIO
	color  bool
	logger *zap.Logger

	// writeErr holds the first failed narration write; Narrate has no error return.
	writeErr error
}

// Option configures a Prompter.
type Option func(*Prompter)

// WithColor enables ANSI styling of narration.
func WithColor(enabled bool) Option {
	return func(p *Prompter) { p.color = enabled }
}

// WithLogger sets the logger used for rejected input.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Prompter) { p.logger = logger }
}

// NewPrompter returns a Prompter over term. Color is off by default.
//
// Precondition: term must be non-nil.
func NewPrompter(term LineIO, opts ...Option) *Prompter {
	p := &Prompter{term: term, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Narrate prints one line of narration.
func (p *Prompter) Narrate(text string) {
	if p.color {
		text = Style(text)
	}
	if err := p.term.WriteLine(text); err != nil && p.writeErr == nil {
		p.writeErr = err
	}
}

// AskCombatAction prints the action menu and re-asks until the answer parses.
//
// Postcondition: Returns a valid action, or the context, read or write error.
func (p *Prompter) AskCombatAction(ctx context.Context, status combat.TurnStatus) (combat.ActionType, error) {
	ability := status.AbilityName
	if status.AbilityUsed {
		ability += " (used)"
	}
	menu := []string{
		"Choose your action:",
		"1 - Attack",
		"2 - Wait",
		"3 - Use ability: " + ability,
	}
	for _, line := range menu {
		p.Narrate(line)
	}
	for {
		raw, err := p.ask(ctx, "> ")
		if err != nil {
			return combat.ActionUnknown, err
		}
		action, err := combat.ParseAction(raw)
		if err == nil {
			return action, nil
		}
		p.logger.Debug("rejected combat action", zap.String("input", raw))
		p.Narrate("Invalid choice, enter 1, 2 or 3.")
	}
}

// AskYesNo prints prompt and re-asks until the answer is a yes or a no.
// Accepted answers are o, y, yes, oui for yes and n, no, non for no, in any case.
func (p *Prompter) AskYesNo(ctx context.Context, prompt string) (bool, error) {
	p.Narrate(prompt)
	for {
		raw, err := p.ask(ctx, "Do you act? (y/n) ")
		if err != nil {
			return false, err
		}
		if yes, ok := ParseYesNo(raw); ok {
			return yes, nil
		}
		p.logger.Debug("rejected yes/no answer", zap.String("input", raw))
		p.Narrate("Please answer y or n.")
	}
}

// AskLine prints prompt and returns the raw answer.
func (p *Prompter) AskLine(ctx context.Context, prompt string) (string, error) {
	return p.ask(ctx, prompt)
}

// ParseYesNo reports the answer raw stands for and whether it is one at all.
func ParseYesNo(raw string) (yes, ok bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "o", "y", "yes", "oui":
		return true, true
	case "n", "no", "non":
		return false, true
	}
	return false, false
}

// ask writes prompt and waits for one line or ctx, whichever comes first.
// A cancelled ask leaves its ReadLine goroutine running until the LineIO yields a
// line or fails: closing a telnet.Conn releases it at once, a Stdio only when
// input arrives or the process exits.
func (p *Prompter) ask(ctx context.Context, prompt string) (string, error) {
	if p.writeErr != nil {
		return "", fmt.Errorf("writing narration: %w", p.writeErr)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := p.term.WritePrompt(prompt); err != nil {
		return "", fmt.Errorf("writing prompt: %w", err)
	}

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := p.term.ReadLine()
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("reading input: %w", r.err)
		}
		return r.line, nil
	}
}
