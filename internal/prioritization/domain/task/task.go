// Package task defines the task record that the scoring engine consumes,
// its lenient wire form, and the repository used to keep a local backlog.
package task

import (
	"errors"
	"strings"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/graph"
)

// Defaults applied when a field is missing from the wire record.
const (
	DefaultTitle      = "Untitled Task"
	DefaultHours      = 1.0
	DefaultImportance = 5
)

// Bounds accepted by validation.
const (
	MinHours      = 0.1
	MaxHours      = 1000.0
	MinImportance = 1
	MaxImportance = 10
	MaxTitleLen   = 255
)

var (
	ErrEmptyTitle        = errors.New("task title cannot be empty")
	ErrInvalidHours      = errors.New("estimated hours must be at least 0.1")
	ErrInvalidImportance = errors.New("importance must be between 1 and 10")
	ErrSelfDependency    = errors.New("a task cannot depend on itself")
	ErrNotFound          = errors.New("task not found")
)

// Task is a normalized task record.
type Task struct {
	ID             *int64         `json:"id"`
	Title          string         `json:"title"`
	DueDate        *calendar.Date `json:"due_date"`
	EstimatedHours float64        `json:"estimated_hours"`
	Importance     int            `json:"importance"`
	Dependencies   []int64        `json:"dependencies"`
}

// New creates a task after checking the invariants enforced on stored
// tasks. Scoring itself accepts any Task.
func New(title string, due *calendar.Date, hours float64, importance int, deps []int64) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if hours < MinHours {
		return nil, ErrInvalidHours
	}
	if importance < MinImportance || importance > MaxImportance {
		return nil, ErrInvalidImportance
	}
	if deps == nil {
		deps = []int64{}
	}
	return &Task{
		Title:          title,
		DueDate:        due,
		EstimatedHours: hours,
		Importance:     importance,
		Dependencies:   deps,
	}, nil
}

// HasID reports whether the task carries an id.
func (t Task) HasID() bool {
	return t.ID != nil
}

// DependsOn reports whether id is among the declared dependencies.
func (t Task) DependsOn(id int64) bool {
	for _, d := range t.Dependencies {
		if d == id {
			return true
		}
	}
	return false
}

// SetID assigns an id and rejects a dependency on itself.
func (t *Task) SetID(id int64) error {
	if t.DependsOn(id) {
		return ErrSelfDependency
	}
	t.ID = &id
	return nil
}

// Nodes projects the tasks that carry an id onto graph nodes.
func Nodes(tasks []Task) []graph.Node {
	nodes := make([]graph.Node, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == nil {
			continue
		}
		nodes = append(nodes, graph.Node{ID: *t.ID, Dependencies: t.Dependencies})
	}
	return nodes
}
