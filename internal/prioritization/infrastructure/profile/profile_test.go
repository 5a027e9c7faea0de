package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
)

const sample = `
default_strategy: Client_First
skip_weekends: false
holidays:
  - 2025-12-24
  - 2025-12-31
strategies:
  - name: client_first
    display_name: Client First
    description: Client commitments before internal work
    weights:
      urgency: 0.4
      importance: 0.4
      effort: 0.1
      dependency: 0.1
engines:
  taskrank.adaptive:
    overdue_boost: 0.5
`

func TestDecode(t *testing.T) {
	p, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "client_first", p.DefaultStrategy)
	require.NotNil(t, p.SkipWeekends)
	assert.False(t, *p.SkipWeekends)

	s, ok := p.Strategy("client_first")
	require.True(t, ok)
	assert.Equal(t, "Client First", s.DisplayName)
	assert.Equal(t, scoring.SourceProfile, s.Source)
	assert.Equal(t, 0.4, s.Weights.Urgency)

	dates, ok := p.HolidayDates()
	require.True(t, ok)
	assert.Equal(t, []calendar.Date{calendar.NewDate(2025, 12, 24), calendar.NewDate(2025, 12, 31)}, dates)

	assert.Equal(t, 0.5, p.EngineConfig("taskrank.adaptive")["overdue_boost"])
	assert.Nil(t, p.EngineConfig("missing"))
}

func TestDecode_EmptyHolidayListDisablesHolidays(t *testing.T) {
	p, err := Decode(strings.NewReader("holidays: []\n"))
	require.NoError(t, err)

	dates, ok := p.HolidayDates()
	assert.True(t, ok)
	assert.Empty(t, dates)
	assert.NotNil(t, dates)
}

func TestDecode_EmptyDocument(t *testing.T) {
	p, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	_, ok := p.HolidayDates()
	assert.False(t, ok)
	assert.Nil(t, p.SkipWeekends)
}

func TestDecode_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown key":     "colour: blue\n",
		"shadows preset":  "strategies:\n  - name: fastest_wins\n    weights: {urgency: 1}\n",
		"duplicate":       "strategies:\n  - name: a\n    weights: {urgency: 1}\n  - name: a\n    weights: {urgency: 1}\n",
		"weight range":    "strategies:\n  - name: a\n    weights: {urgency: 2}\n",
		"zero weights":    "strategies:\n  - name: a\n    weights: {}\n",
		"missing name":    "strategies:\n  - weights: {urgency: 1}\n",
		"bad holiday":     "holidays: [christmas]\n",
		"unknown default": "default_strategy: nope\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskrank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"client_first"}, p.StrategyNames())

	_, err = Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
