package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/services"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/workload"
)

var (
	colorHigh   = lipgloss.Color("#E0115F")
	colorMedium = lipgloss.Color("#FFBF00")
	colorLow    = lipgloss.Color("#50C878")
	colorAccent = lipgloss.Color("#0F52BA")
	colorMuted  = lipgloss.Color("#666666")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorHigh)
	warnStyle  = lipgloss.NewStyle().Foreground(colorMedium)
	okStyle    = lipgloss.NewStyle().Foreground(colorLow)
	scoreStyle = lipgloss.NewStyle().Bold(true).Width(6).Align(lipgloss.Right)
	rankStyle  = lipgloss.NewStyle().Foreground(colorMuted).Width(4).Align(lipgloss.Right)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1)

	summaryStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

func levelStyle(l scoring.Level) lipgloss.Style {
	switch l {
	case scoring.LevelHigh:
		return lipgloss.NewStyle().Foreground(colorHigh)
	case scoring.LevelMedium:
		return lipgloss.NewStyle().Foreground(colorMedium)
	default:
		return lipgloss.NewStyle().Foreground(colorLow)
	}
}

func tag(text string, bg lipgloss.Color) string {
	return tagStyle.Background(bg).Render(text)
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderScoredTask(w io.Writer, rank int, t services.ScoredTask, showExplanation bool) {
	style := levelStyle(t.PriorityLevel)

	var tags []string
	if t.IsOverdue {
		tags = append(tags, tag("OVERDUE", colorHigh))
	}
	if t.IsBlockingOthers {
		tags = append(tags, tag("BLOCKING", colorAccent))
	}
	if t.HasCircularDependency {
		tags = append(tags, tag("CYCLE", colorMedium))
	}

	line := fmt.Sprintf("%s %s  %s", rankStyle.Render(fmt.Sprintf("%d.", rank)), style.Inherit(scoreStyle).Render(fmt.Sprintf("%.1f", t.PriorityScore)), t.Title)
	if len(tags) > 0 {
		line += " " + strings.Join(tags, " ")
	}
	fmt.Fprintln(w, line)

	details := []string{t.EisenhowerQuadrant.Label(), fmt.Sprintf("%gh", t.EstimatedHours), fmt.Sprintf("importance %d", t.Importance)}
	if t.DueDate != nil {
		details = append(details, "due "+t.DueDate.String())
	}
	if t.ID != nil {
		details = append([]string{fmt.Sprintf("#%d", *t.ID)}, details...)
	}
	fmt.Fprintf(w, "      %s\n", mutedStyle.Render(strings.Join(details, " · ")))
	if showExplanation && t.Explanation != "" {
		fmt.Fprintf(w, "      %s\n", t.Explanation)
	}
}

func renderAnalysis(w io.Writer, r *queries.AnalyzeTasksResult, showExplanation bool) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s · %d tasks · reference %s", r.StrategyDisplay, r.Count, r.ReferenceDate)))
	fmt.Fprintln(w)
	for i, t := range r.Tasks {
		renderScoredTask(w, i+1, t, showExplanation)
	}
	fmt.Fprintln(w)

	s := r.Summary
	lines := []string{
		fmt.Sprintf("%s %d   %s %d   %s %d",
			levelStyle(scoring.LevelHigh).Render("high"), s.HighPriorityCount,
			levelStyle(scoring.LevelMedium).Render("medium"), s.MediumPriorityCount,
			levelStyle(scoring.LevelLow).Render("low"), s.LowPriorityCount),
		fmt.Sprintf("overdue %d   total %.1fh", s.OverdueCount, s.TotalEstimatedHours),
		fmt.Sprintf("do now %d · plan %d · delegate %d · eliminate %d",
			r.Quadrants.DoNow, r.Quadrants.Plan, r.Quadrants.Delegate, r.Quadrants.Eliminate),
	}
	if s.CircularDependenciesDetected {
		lines = append(lines, warnStyle.Render("circular dependencies detected"))
	}
	if r.TimeContext != nil {
		lines = append(lines, mutedStyle.Render(r.TimeContext.Message))
	}
	fmt.Fprintln(w, summaryStyle.Render(strings.Join(lines, "\n")))
}

func renderSuggestion(w io.Writer, r *queries.SuggestTasksResult) {
	fmt.Fprintln(w, titleStyle.Render(r.Message))
	fmt.Fprintln(w)
	for i, t := range r.Tasks {
		renderScoredTask(w, i+1, t, true)
	}
	if len(r.Tasks) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%.1fh of %.1fh · %s", r.TotalHours, r.MaxHours, r.Strategy)))
	}
	if r.Fatigue != nil {
		fmt.Fprintln(w, warnStyle.Render(r.Fatigue.Recommendation))
	}
}

func renderStrategies(w io.Writer, infos []scoring.StrategyInfo, def string) {
	for _, info := range infos {
		name := titleStyle.Render(info.Name)
		if info.Name == def {
			name += " " + okStyle.Render("(default)")
		}
		if info.Source != "" && info.Source != scoring.SourceBuiltin {
			name += " " + mutedStyle.Render("["+info.Source+"]")
		}
		fmt.Fprintln(w, name)
		fmt.Fprintf(w, "  %s\n", info.Description)
		if info.BestFor != "" {
			fmt.Fprintf(w, "  %s\n", mutedStyle.Render("best for: "+info.BestFor))
		}
		wt := info.Weights
		fmt.Fprintf(w, "  %s\n\n", mutedStyle.Render(fmt.Sprintf("urgency %.2f · importance %.2f · effort %.2f · dependency %.2f",
			wt.Urgency, wt.Importance, wt.Effort, wt.Dependency)))
	}
}

// RenderTaskList prints the stored backlog.
func RenderTaskList(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks stored.")
		return
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Tasks (%d)", len(tasks))))
	for _, t := range tasks {
		id := "-"
		if t.ID != nil {
			id = fmt.Sprintf("%d", *t.ID)
		}
		details := []string{fmt.Sprintf("%gh", t.EstimatedHours), fmt.Sprintf("importance %d", t.Importance)}
		if t.DueDate != nil {
			details = append(details, "due "+t.DueDate.String())
		}
		if len(t.Dependencies) > 0 {
			deps := make([]string, len(t.Dependencies))
			for i, d := range t.Dependencies {
				deps[i] = fmt.Sprintf("#%d", d)
			}
			details = append(details, "after "+strings.Join(deps, ","))
		}
		fmt.Fprintf(w, "%s %s\n", rankStyle.Render(id), t.Title)
		fmt.Fprintf(w, "     %s\n", mutedStyle.Render(strings.Join(details, " · ")))
	}
}

func renderTimeContext(w io.Writer, tc workload.TimeContext) {
	fmt.Fprintln(w, titleStyle.Render(tc.Period))
	fmt.Fprintln(w, tc.Message)
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("suggested max %.0fh · effort %s · focus %s", tc.SuggestedMaxHours, tc.EffortPreference, tc.FocusLevel)))
}

func renderFatigue(w io.Writer, f workload.Fatigue) {
	style := okStyle
	switch {
	case f.Level >= 60:
		style = errorStyle
	case f.Level >= 20:
		style = warnStyle
	}
	fmt.Fprintln(w, style.Render(fmt.Sprintf("fatigue %.1f", f.Level))+mutedStyle.Render(fmt.Sprintf(" · multiplier %.2f", f.ScoreMultiplier)))
	fmt.Fprintln(w, f.Recommendation)
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%.1fh worked · %d heavy in a row · %d same category", f.TotalHoursWorked, f.ConsecutiveHeavyTasks, f.SameCategoryStreak)))
}
