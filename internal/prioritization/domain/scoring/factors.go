package scoring

import (
	"math"
	"unicode/utf8"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/graph"
)

// Factor scorer constants.
const (
	NoDueDateUrgency       = 30.0
	DueTodayUrgency        = 75.0
	OverdueMaxPenaltyDays  = 14
	QuickWinHours          = 2.0
	MinEffortHours         = 0.1
	MaxEffortHours         = 40.0
	CircularPenalty        = 0.5
	UnmetDependencyPenalty = 0.8
)

// UrgencyResult is the outcome of scoring a due date.
type UrgencyResult struct {
	Score   float64
	Overdue bool
	// WorkingDays is nil when the task has no due date.
	WorkingDays *int
}

// Urgency scores how soon a task is due relative to ref, counted in working
// days on cal.
func Urgency(cal *calendar.Calendar, due *calendar.Date, ref calendar.Date) UrgencyResult {
	if due == nil {
		return UrgencyResult{Score: NoDueDateUrgency}
	}

	wd := cal.CountWorkingDays(ref, *due)
	days := float64(wd)
	res := UrgencyResult{WorkingDays: &wd}

	switch {
	case wd < 0:
		res.Overdue = true
		res.Score = math.Min(80+math.Min(math.Abs(days)/OverdueMaxPenaltyDays, 1)*20, 100)
	case wd == 0:
		res.Score = DueTodayUrgency
	case wd <= 5:
		res.Score = 75 - (days/5)*25
	case wd <= 22:
		res.Score = 50 - ((days-5)/17)*30
	default:
		res.Score = math.Max(10+10*math.Exp(-(days-22)/22), 10)
	}
	return res
}

// Importance maps a 1-10 rating onto a convex 10-100 curve.
func Importance(rating int) float64 {
	r := rating
	if r < 1 {
		r = 1
	}
	if r > 10 {
		r = 10
	}
	normalized := float64(r) / 10
	return math.Min(10+math.Pow(normalized, 1.5)*90, 100)
}

// Effort rewards small tasks: fewer hours give a higher score.
func Effort(hours float64) float64 {
	h := math.Max(MinEffortHours, math.Min(hours, MaxEffortHours))

	switch {
	case h <= QuickWinHours:
		return 100 - (h/QuickWinHours)*20
	case h <= 8:
		return 80 - ((h-2)/6)*30
	case h <= MaxEffortHours:
		return 50 - ((h-8)/32)*30
	default:
		return 10
	}
}

// DependencyResult is the outcome of scoring a task's place in the graph.
type DependencyResult struct {
	Score    float64
	Blocking bool
}

// Dependency scores a task by how many batch members depend on it. A task
// that references ids outside the batch is penalised.
func Dependency(id *int64, deps []int64, g graph.Graph) DependencyResult {
	if id == nil {
		if len(deps) == 0 {
			return DependencyResult{Score: 30}
		}
		return DependencyResult{Score: 20}
	}

	n := g.DependentsCount(*id)
	var score float64
	switch {
	case n >= 3:
		score = 80 + float64(min(n-3, 4))*5
	case n >= 1:
		score = 50 + float64(n)*15
	default:
		score = 30
	}

	for _, d := range deps {
		if !g.Has(d) {
			score *= UnmetDependencyPenalty
			break
		}
	}

	return DependencyResult{
		Score:    math.Min(score, 100),
		Blocking: n > 0,
	}
}

// Complexity is an informational 0-100 estimate built from title length,
// dependency count and hours. It does not feed the priority score.
func Complexity(title string, deps int, hours float64) float64 {
	titleScore := math.Min(float64(utf8.RuneCountInString(title))/100, 1) * 30
	depScore := math.Min(float64(deps)/5, 1) * 40
	effortScore := math.Min(hours/20, 1) * 30
	return Round(titleScore+depScore+effortScore, 2)
}
