package models

// SchedulerConfig holds the process-wide scheduling settings. It is loaded
// once at startup, editable at runtime, and applies only to subsequent
// scheduling computations — stored cards are never rewritten retroactively.
type SchedulerConfig struct {
	// LearningSteps are re-show offsets in minutes applied before a card
	// graduates, in order.
	LearningSteps []int `json:"learning_steps"`
	// GraduatingIntervalDays is the interval assigned when a card exits
	// the learning ladder.
	GraduatingIntervalDays float64 `json:"graduating_interval_days"`
	// EasyIntervalDays is reserved for easy-on-first-graduation
	// acceleration.
	EasyIntervalDays float64 `json:"easy_interval_days"`
	// MaxIntervalDays caps how far out any review can be scheduled.
	MaxIntervalDays float64 `json:"max_interval_days"`
	// NewCardIntervalDays is the interval assigned at first graduation.
	NewCardIntervalDays float64 `json:"new_card_interval_days"`
}

// DefaultSchedulerConfig returns the documented fallback settings used
// when no configuration has been persisted for the engine.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		LearningSteps:          []int{10, 1440},
		GraduatingIntervalDays: 6,
		EasyIntervalDays:       10,
		MaxIntervalDays:        365,
		NewCardIntervalDays:    1,
	}
}

// Normalize fills zero or invalid fields with the documented defaults so a
// partially edited config can never wedge the scheduler.
func (c SchedulerConfig) Normalize() SchedulerConfig {
	def := DefaultSchedulerConfig()
	if len(c.LearningSteps) == 0 {
		c.LearningSteps = def.LearningSteps
	}
	for i, step := range c.LearningSteps {
		if step <= 0 {
			c.LearningSteps[i] = def.LearningSteps[0]
		}
	}
	if c.GraduatingIntervalDays <= 0 {
		c.GraduatingIntervalDays = def.GraduatingIntervalDays
	}
	if c.EasyIntervalDays <= 0 {
		c.EasyIntervalDays = def.EasyIntervalDays
	}
	if c.MaxIntervalDays <= 0 {
		c.MaxIntervalDays = def.MaxIntervalDays
	}
	if c.NewCardIntervalDays <= 0 {
		c.NewCardIntervalDays = def.NewCardIntervalDays
	}
	return c
}
