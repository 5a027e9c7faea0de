package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/security"
)

const cliSource = "taskrank.cli"

// taskFile is the document form: either a bare list or {"tasks": [...]}.
type taskFile struct {
	Tasks []task.RawTask `json:"tasks" yaml:"tasks"`
}

// ReadTasks loads raw tasks from path, or from stdin when path is "-".
// Files ending in .yaml or .yml are YAML; anything else is sniffed.
func ReadTasks(path string, stdin io.Reader) ([]task.RawTask, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = security.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	return decodeTasks(data, yamlPath(path))
}

func yamlPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func decodeTasks(data []byte, isYAML bool) ([]task.RawTask, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("task input is empty")
	}
	if !isYAML && trimmed[0] != '[' && trimmed[0] != '{' {
		isYAML = true
	}

	if isYAML {
		var list []task.RawTask
		if err := yaml.Unmarshal(trimmed, &list); err == nil {
			return list, nil
		}
		var doc taskFile
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML task input: %w", err)
		}
		return doc.Tasks, nil
	}

	if trimmed[0] == '[' {
		var list []task.RawTask
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("invalid JSON task input: %w", err)
		}
		return list, nil
	}
	var doc taskFile
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON task input: %w", err)
	}
	return doc.Tasks, nil
}

// scoringFlags are the flags shared by analyze, suggest and export.
type scoringFlags struct {
	file           string
	stored         bool
	strategy       string
	weights        string
	date           string
	noSkipWeekends bool
	holidays       []string
	timeAware      bool
}

func (f *scoringFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.file, "file", "f", "", "tasks file (JSON or YAML, - for stdin)")
	fs.BoolVar(&f.stored, "stored", false, "use the stored backlog instead of a file")
	fs.StringVarP(&f.strategy, "strategy", "s", "", "scoring strategy")
	fs.StringVarP(&f.weights, "weights", "w", "", "custom weights, e.g. urgency=0.5,importance=0.3")
	fs.StringVar(&f.date, "date", "", "reference date (YYYY-MM-DD), defaults to today")
	fs.BoolVar(&f.noSkipWeekends, "no-skip-weekends", false, "count weekends as working days")
	fs.StringSliceVar(&f.holidays, "holiday", nil, "holiday date (YYYY-MM-DD), repeatable")
	fs.BoolVar(&f.timeAware, "time-aware", false, "adjust to the current time of day")
}

func (f *scoringFlags) options() (queries.ScoringOptions, error) {
	opts := queries.ScoringOptions{
		Strategy:  strings.ToLower(strings.TrimSpace(f.strategy)),
		Holidays:  f.holidays,
		TimeAware: f.timeAware,
		Source:    cliSource,
	}
	if f.noSkipWeekends {
		skip := false
		opts.SkipWeekends = &skip
	}
	if f.weights != "" {
		w, err := parseWeights(f.weights)
		if err != nil {
			return opts, err
		}
		opts.Weights = &w
	}
	if f.date != "" {
		d, err := calendar.ParseDate(f.date)
		if err != nil {
			return opts, fmt.Errorf("invalid --date, use YYYY-MM-DD: %w", err)
		}
		opts.ReferenceDate = &d
	}
	return opts, nil
}

// load reads the input tasks from the file or the stored backlog.
func (f *scoringFlags) load(cmd *cobra.Command, a *App) ([]task.RawTask, error) {
	switch {
	case f.stored && f.file != "":
		return nil, fmt.Errorf("--file and --stored are mutually exclusive")
	case f.stored:
		return a.ListTasksHandler.HandleRaw(cmd.Context())
	case f.file == "":
		return nil, fmt.Errorf("either --file or --stored is required")
	default:
		return ReadTasks(f.file, cmd.InOrStdin())
	}
}

// parseWeights reads "urgency=0.5,importance=0.3". Missing factors keep
// the smart balance weight.
func parseWeights(s string) (scoring.Weights, error) {
	w := scoring.SmartBalance.Weights()
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return w, fmt.Errorf("invalid weight %q, use factor=value", part)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return w, fmt.Errorf("invalid weight value %q: %w", value, err)
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "urgency", "u":
			w.Urgency = v
		case "importance", "i":
			w.Importance = v
		case "effort", "e":
			w.Effort = v
		case "dependency", "dependencies", "d":
			w.Dependency = v
		default:
			return w, fmt.Errorf("unknown weight factor %q", key)
		}
	}
	return w, nil
}
