package scoring

import (
	"fmt"
	"strings"
)

// Level is the coarse priority tier.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
)

// Tier thresholds on the unrounded priority score.
const (
	HighThreshold   = 75.0
	MediumThreshold = 50.0
)

// LevelFor classifies a priority score.
func LevelFor(score float64) Level {
	switch {
	case score >= HighThreshold:
		return LevelHigh
	case score >= MediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "High"
	case LevelMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "high":
		*l = LevelHigh
	case "medium":
		*l = LevelMedium
	case "low":
		*l = LevelLow
	default:
		return fmt.Errorf("invalid priority level %q", text)
	}
	return nil
}

// Quadrant is the Eisenhower matrix cell of a task.
type Quadrant int

const (
	DoNow Quadrant = iota
	Plan
	Delegate
	Eliminate
)

// Eisenhower thresholds.
const (
	UrgentThreshold       = 60.0
	ImportantRatingCutoff = 6
)

// Classify places a task in the matrix from its urgency score and raw
// importance rating.
func Classify(urgency float64, importance int) Quadrant {
	urgent := urgency >= UrgentThreshold
	important := importance >= ImportantRatingCutoff
	switch {
	case urgent && important:
		return DoNow
	case important:
		return Plan
	case urgent:
		return Delegate
	default:
		return Eliminate
	}
}

// Quadrants returns all quadrants in matrix order.
func Quadrants() []Quadrant {
	return []Quadrant{DoNow, Plan, Delegate, Eliminate}
}

func (q Quadrant) String() string {
	switch q {
	case DoNow:
		return "do_now"
	case Plan:
		return "plan"
	case Delegate:
		return "delegate"
	default:
		return "eliminate"
	}
}

// Label is the human description of the quadrant.
func (q Quadrant) Label() string {
	switch q {
	case DoNow:
		return "DO NOW - Urgent & Important"
	case Plan:
		return "PLAN - Important but not urgent"
	case Delegate:
		return "DELEGATE - Urgent but less important"
	default:
		return "CONSIDER - Neither urgent nor important"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (q Quadrant) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (q *Quadrant) UnmarshalText(text []byte) error {
	for _, c := range Quadrants() {
		if c.String() == string(text) {
			*q = c
			return nil
		}
	}
	return fmt.Errorf("invalid quadrant %q", text)
}
