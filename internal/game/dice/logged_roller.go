package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged random decisions.
// Every draw is logged at debug level so a seeded session can be replayed from its log.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Roll evaluates expr and logs the result.
//
// Precondition: expr must come from Parse.
// Postcondition: result logged; expr.Min() <= Total() <= expr.Max().
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// Percent reports whether a pct-in-100 chance succeeds.
//
// Postcondition: Always false for pct <= 0, always true for pct >= 100.
func (r *Roller) Percent(pct int) bool {
	roll := r.src.Intn(100)
	hit := roll < pct
	r.logger.Debug("percent roll",
		zap.Int("roll", roll),
		zap.Int("chance", pct),
		zap.Bool("hit", hit),
	)
	return hit
}

// Pick returns a uniformly chosen index in [0, n).
//
// Precondition: n > 0.
func (r *Roller) Pick(n int) int {
	idx := r.src.Intn(n)
	r.logger.Debug("pick", zap.Int("n", n), zap.Int("index", idx))
	return idx
}
