// Package scoring holds the factor scorers, strategy presets and the
// classification rules used to turn a task into a priority score.
package scoring

import "math"

// Weights are the per-factor multipliers of the weighted sum.
type Weights struct {
	Urgency    float64 `json:"urgency" yaml:"urgency"`
	Importance float64 `json:"importance" yaml:"importance"`
	Effort     float64 `json:"effort" yaml:"effort"`
	Dependency float64 `json:"dependency" yaml:"dependency"`
}

// NewWeights returns w scaled so the four values sum to 1.
// A non-positive sum is returned unchanged.
func NewWeights(urgency, importance, effort, dependency float64) Weights {
	return Weights{
		Urgency:    urgency,
		Importance: importance,
		Effort:     effort,
		Dependency: dependency,
	}.Normalize()
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.Urgency + w.Importance + w.Effort + w.Dependency
}

// Normalize divides every weight by the sum when the sum is positive.
func (w Weights) Normalize() Weights {
	total := w.Sum()
	if total <= 0 {
		return w
	}
	return Weights{
		Urgency:    w.Urgency / total,
		Importance: w.Importance / total,
		Effort:     w.Effort / total,
		Dependency: w.Dependency / total,
	}
}

// Rounded returns the weights rounded to three decimals for display.
func (w Weights) Rounded() Weights {
	return Weights{
		Urgency:    Round(w.Urgency, 3),
		Importance: Round(w.Importance, 3),
		Effort:     Round(w.Effort, 3),
		Dependency: Round(w.Dependency, 3),
	}
}

// Round rounds v to the given number of decimals, ties to even.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}
