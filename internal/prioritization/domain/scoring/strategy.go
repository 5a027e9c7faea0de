package scoring

import (
	"fmt"
	"strings"
)

// Strategy names a weighting preset.
type Strategy string

const (
	SmartBalance   Strategy = "smart_balance"
	FastestWins    Strategy = "fastest_wins"
	HighImpact     Strategy = "high_impact"
	DeadlineDriven Strategy = "deadline_driven"
)

// DefaultStrategy is used whenever no strategy, or an unknown one, is given.
const DefaultStrategy = SmartBalance

type preset struct {
	display     string
	description string
	bestFor     string
	weights     Weights
}

var presets = map[Strategy]preset{
	SmartBalance: {
		display:     "Smart Balance",
		description: "Balanced consideration of urgency, importance, effort, and dependencies",
		bestFor:     "General productivity, mixed task lists",
		weights:     Weights{Urgency: 0.30, Importance: 0.35, Effort: 0.15, Dependency: 0.20},
	},
	FastestWins: {
		display:     "Fastest Wins",
		description: "Prioritizes quick tasks to build momentum and clear your backlog",
		bestFor:     "Overwhelming backlogs, building momentum",
		weights:     Weights{Urgency: 0.15, Importance: 0.20, Effort: 0.55, Dependency: 0.10},
	},
	HighImpact: {
		display:     "High Impact",
		description: "Focuses on the most important tasks regardless of deadline",
		bestFor:     "Strategic work, long-term projects",
		weights:     Weights{Urgency: 0.15, Importance: 0.60, Effort: 0.10, Dependency: 0.15},
	},
	DeadlineDriven: {
		display:     "Deadline Driven",
		description: "Prioritizes tasks by their due dates and urgency",
		bestFor:     "Deadline-heavy environments, time-sensitive work",
		weights:     Weights{Urgency: 0.55, Importance: 0.20, Effort: 0.10, Dependency: 0.15},
	},
}

// Presets returns the built-in strategies in their canonical order.
func Presets() []Strategy {
	return []Strategy{SmartBalance, FastestWins, HighImpact, DeadlineDriven}
}

// IsPreset reports whether s is one of the built-in strategies.
func (s Strategy) IsPreset() bool {
	_, ok := presets[s]
	return ok
}

// Resolve maps unknown strategies to DefaultStrategy.
func (s Strategy) Resolve() Strategy {
	if s.IsPreset() {
		return s
	}
	return DefaultStrategy
}

// Weights returns the preset weights, falling back to DefaultStrategy.
func (s Strategy) Weights() Weights {
	return presets[s.Resolve()].weights
}

// DisplayName returns the human label, or "Custom" for non-preset names.
func (s Strategy) DisplayName() string {
	if p, ok := presets[s]; ok {
		return p.display
	}
	return "Custom"
}

// Description returns the preset description.
func (s Strategy) Description() string {
	return presets[s].description
}

// BestFor describes the situations the preset suits.
func (s Strategy) BestFor() string {
	return presets[s].bestFor
}

func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy validates a strategy name. Empty input yields DefaultStrategy.
func ParseStrategy(name string) (Strategy, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return DefaultStrategy, nil
	}
	s := Strategy(name)
	if !s.IsPreset() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return s, nil
}

// StrategyInfo describes a strategy for listings.
type StrategyInfo struct {
	Name        string  `json:"name" yaml:"name"`
	DisplayName string  `json:"display_name" yaml:"display_name"`
	Description string  `json:"description" yaml:"description"`
	BestFor     string  `json:"best_for,omitempty" yaml:"best_for,omitempty"`
	Weights     Weights `json:"weights" yaml:"weights"`
	Source      string  `json:"source,omitempty" yaml:"-"`
}

// Source values for StrategyInfo.
const (
	SourceBuiltin = "builtin"
	SourceProfile = "profile"
	SourcePlugin  = "plugin"
)

// Info describes a preset.
func (s Strategy) Info() StrategyInfo {
	return StrategyInfo{
		Name:        string(s),
		DisplayName: s.DisplayName(),
		Description: s.Description(),
		BestFor:     s.BestFor(),
		Weights:     s.Weights().Rounded(),
		Source:      SourceBuiltin,
	}
}

// Catalogue lists every preset.
func Catalogue() []StrategyInfo {
	out := make([]StrategyInfo, 0, len(presets))
	for _, s := range Presets() {
		out = append(out, s.Info())
	}
	return out
}
