package adventure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/character"
	"github.com/cory-johannsen/fantasy/internal/game/combat"
	"github.com/cory-johannsen/fantasy/internal/game/dice"
	"github.com/cory-johannsen/fantasy/internal/game/npc"
	"github.com/cory-johannsen/fantasy/internal/storage"
)

// Runner plays one character through the story. It is not safe for concurrent use;
// create one per session.
type Runner struct {
	content  Content
	store    storage.CharacterUpdater
	resolver Resolver
	narrator combat.Narrator
	roller   *dice.Roller
	rules    Rules
	logger   *zap.Logger
}

// NewRunner creates a Runner.
//
// Precondition: every argument must be non-nil and rules must pass Validate.
func NewRunner(content Content, store storage.CharacterUpdater, resolver Resolver, narrator combat.Narrator, roller *dice.Roller, rules Rules, logger *zap.Logger) *Runner {
	return &Runner{
		content:  content,
		store:    store,
		resolver: resolver,
		narrator: narrator,
		roller:   roller,
		rules:    rules,
		logger:   logger,
	}
}

// run carries the per-session bookkeeping of Run.
type run struct {
	ch      *character.Character
	ability catalog.Ability
	basics  []catalog.EnemyTemplate
	bosses  []catalog.EnemyTemplate
	story   []string
	// local is experience earned this run but not yet merged into ch.Experience.
	local int
	log   *zap.Logger
}

// Run plays every story event in order until the story is exhausted or the character dies.
//
// Precondition: ch must be a stored character with HP > 0.
// Postcondition: On Victory the local experience is merged and HP, experience, attack
// and level are persisted. On Defeat HP 0 and the unmerged experience are persisted and
// no further step is processed. A prompt, ctx or store error is returned as is.
func (r *Runner) Run(ctx context.Context, ch *character.Character, src Prompter) (Summary, error) {
	if ch == nil {
		return Summary{}, ErrNoCharacter
	}
	ability, err := r.content.AbilityForClass(ch.ClassID)
	if err != nil {
		return Summary{}, fmt.Errorf("loading ability for %q: %w", ch.Name, err)
	}
	s := &run{
		ch:      ch,
		ability: ability,
		basics:  r.content.Enemies(catalog.CategoryBasic),
		bosses:  r.content.Bosses(),
		story:   r.content.Story(),
		log:     r.logger.With(zap.Int64("character_id", ch.ID)),
	}
	if len(s.basics) == 0 || len(s.bosses) == 0 {
		return Summary{}, fmt.Errorf("enemy roster: %w", catalog.ErrNotFound)
	}

	total := len(s.story)
	r.narrator.Narrate(fmt.Sprintf("The adventure of %s the %s begins (HP=%d, ATK=%d)", ch.Name, ch.ClassName, ch.HP, ch.Attack))
	s.log.Info("adventure started", zap.Int("steps", total))

	for step := 0; step < total; {
		if err := ctx.Err(); err != nil {
			return Summary{}, err
		}
		r.narrator.Narrate(fmt.Sprintf("== Step %d/%d ==", step+1, total))
		accepted, err := src.AskYesNo(ctx, s.story[step])
		if err != nil {
			return Summary{}, fmt.Errorf("asking step %d: %w", step+1, err)
		}

		var alive bool
		if accepted {
			alive, err = r.accept(ctx, s, step, total, src)
		} else {
			alive, err = r.decline(ctx, s)
		}
		if err != nil {
			return Summary{}, err
		}
		if !alive {
			return r.defeat(s, step), nil
		}

		step++

		if r.rules.IsBossStep(step) {
			alive, err = r.bossFight(ctx, s, step, total, src)
			if err != nil {
				return Summary{}, err
			}
			if !alive {
				return r.defeat(s, step), nil
			}
		}

		if err := r.levelCheck(ctx, s); err != nil {
			return Summary{}, err
		}
	}

	return r.finish(ctx, s, total)
}

func (r *Runner) accept(ctx context.Context, s *run, step, total int, src Prompter) (bool, error) {
	reward := r.rules.StepXP
	if r.roller.Percent(r.rules.EncounterChancePct) {
		tmpl := s.basics[r.roller.Pick(len(s.basics))]
		enemy := npc.NewInstance(tmpl, npc.ScaleFactor(step, total, r.rules.BasicScaleSpan))
		r.narrator.Narrate(fmt.Sprintf("Encounter: %s (HP %d, ATK %d)", enemy.Name, enemy.HP, enemy.Attack))
		out, err := r.resolver.Resolve(ctx, s.ch, enemy, s.ability, src)
		if err != nil {
			return false, fmt.Errorf("encounter at step %d: %w", step+1, err)
		}
		if !out.Victory {
			r.narrator.Narrate("Game over.")
			return false, nil
		}
		reward += r.rules.EncounterVictoryXP
	} else {
		r.narrator.Narrate("You move on without meeting any enemies for now.")
	}
	s.local += reward
	r.narrator.Narrate(fmt.Sprintf("+%d XP (local total = %d)", reward, s.local))
	return true, nil
}

func (r *Runner) decline(ctx context.Context, s *run) (bool, error) {
	loss := max(0, r.roller.Roll(r.rules.DeclinePenalty).Total())
	s.ch.HP -= loss
	r.narrator.Narrate(fmt.Sprintf("You chose not to act: you lose %d HP (ambush, fatigue...). HP left: %d", loss, max(0, s.ch.HP)))
	if s.ch.HP > 0 {
		return true, nil
	}
	s.ch.HP = 0
	r.narrator.Narrate("You died because of a bad decision...")
	patch := storage.CharacterPatch{HP: storage.Int(0), Experience: storage.Int(s.ch.Experience)}
	if err := r.store.UpdateCharacter(ctx, s.ch.ID, patch); err != nil {
		return false, fmt.Errorf("persisting death: %w", err)
	}
	return false, nil
}

func (r *Runner) bossFight(ctx context.Context, s *run, step, total int, src Prompter) (bool, error) {
	tmpl := s.bosses[r.rules.BossIndex(step, len(s.bosses))]
	boss := npc.NewInstance(tmpl, npc.ScaleFactor(step, total, r.rules.BossScaleSpan))
	r.narrator.Narrate(fmt.Sprintf("!!! Major encounter: Boss %s (HP %d, ATK %d) !!!", boss.Name, boss.HP, boss.Attack))
	out, err := r.resolver.Resolve(ctx, s.ch, boss, s.ability, src)
	if err != nil {
		return false, fmt.Errorf("boss fight after step %d: %w", step, err)
	}
	if !out.Victory {
		r.narrator.Narrate("You were defeated by the boss... the end.")
		return false, nil
	}
	gained := r.rules.BossReward(step)
	s.local += gained
	r.narrator.Narrate(fmt.Sprintf("Boss slain! +%d XP", gained))
	return true, nil
}

func (r *Runner) levelCheck(ctx context.Context, s *run) error {
	from := s.ch.Level
	target := character.LevelFor(s.ch.Experience+s.local, r.rules.XPPerLevel)
	gained := s.ch.LevelUp(target, r.rules.LevelAttackBonus, r.rules.LevelHPBonus)
	if gained == 0 {
		return nil
	}
	r.narrator.Narrate(fmt.Sprintf("LEVEL UP! You gain %d level(s): %d -> %d", gained, from, s.ch.Level))
	s.log.Info("level up", zap.Int("from", from), zap.Int("to", s.ch.Level))
	patch := storage.CharacterPatch{
		HP:     storage.Int(s.ch.HP),
		Attack: storage.Int(s.ch.Attack),
		Level:  storage.Int(s.ch.Level),
	}
	if err := r.store.UpdateCharacter(ctx, s.ch.ID, patch); err != nil {
		return fmt.Errorf("persisting level up: %w", err)
	}
	return nil
}

func (r *Runner) defeat(s *run, steps int) Summary {
	s.log.Info("adventure lost", zap.Int("steps_completed", steps))
	return summarize(StateDefeat, s.ch, steps)
}

func (r *Runner) finish(ctx context.Context, s *run, total int) (Summary, error) {
	s.ch.Experience += s.local
	s.local = 0
	patch := storage.CharacterPatch{
		HP:         storage.Int(s.ch.HP),
		Experience: storage.Int(s.ch.Experience),
		Attack:     storage.Int(s.ch.Attack),
		Level:      storage.Int(s.ch.Level),
	}
	if err := r.store.UpdateCharacter(ctx, s.ch.ID, patch); err != nil {
		return Summary{}, fmt.Errorf("persisting final state: %w", err)
	}
	sum := summarize(StateVictory, s.ch, total)
	r.narrator.Narrate("You have completed the adventure! Final summary:")
	r.narrator.Narrate(fmt.Sprintf("Hero: %s | Class: %s | Level: %d | XP: %d | HP: %d | ATK: %d",
		sum.Name, sum.ClassName, sum.Level, sum.Experience, sum.HP, sum.Attack))
	r.narrator.Narrate("Well done!")
	s.log.Info("adventure won", zap.Int("level", sum.Level), zap.Int("experience", sum.Experience))
	return sum, nil
}
