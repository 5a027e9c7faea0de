package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/services"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

func analysed(t *testing.T) []services.ScoredTask {
	t.Helper()
	ref := calendar.NewDate(2025, 6, 2)
	due := calendar.NewDate(2025, 6, 4)
	engine := services.NewPriorityEngine(services.DefaultPriorityEngineConfig())
	return engine.AnalyzeBatch([]task.Task{
		{Title: "Prepare demo, slides", DueDate: &due, EstimatedHours: 2, Importance: 8, Dependencies: []int64{}},
		{Title: "Tidy inbox", EstimatedHours: 0.5, Importance: 2, Dependencies: []int64{}},
	}, ref)
}

func TestWriteCSV(t *testing.T) {
	tasks := analysed(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tasks))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, CSVHeader, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "Prepare demo, slides", records[1][1])
	assert.Equal(t, "2025-06-04", records[1][9])
	assert.Equal(t, "2", records[1][10])
	assert.Equal(t, "false", records[1][11])
	assert.Equal(t, "", records[2][9])
	assert.Equal(t, "0.5", records[2][10])
	assert.Equal(t, tasks[1].Explanation, records[2][12])
}

func TestWriteJSON(t *testing.T) {
	tasks := analysed(t)
	now := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewDocument("smart_balance", tasks, now)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "2025-06-02T09:30:00Z", decoded["exported_at"])
	assert.Equal(t, "smart_balance", decoded["strategy"])
	assert.Equal(t, 2.0, decoded["total_tasks"])

	summary := decoded["summary"].(map[string]any)
	total := summary["high_priority"].(float64) + summary["medium_priority"].(float64) + summary["low_priority"].(float64)
	assert.Equal(t, 2.0, total)
}

func TestNewDocument_Empty(t *testing.T) {
	doc := NewDocument("fastest_wins", nil, time.Now())
	assert.NotNil(t, doc.Tasks)
	assert.Equal(t, 0, doc.TotalTasks)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", f.ContentType())
	assert.Equal(t, "task_analysis.csv", f.Filename())

	f, err = ParseFormat("ics")
	require.NoError(t, err)
	assert.Equal(t, "text/calendar", f.ContentType())

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWriteICS(t *testing.T) {
	tasks := analysed(t)
	now := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, tasks, now))
	assert.Contains(t, buf.String(), "PRODID:"+productID)

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	require.Len(t, cal.Children, 2)

	for i, child := range cal.Children {
		assert.Equal(t, ical.CompToDo, child.Name)
		assert.Equal(t, "rank-"+strconv.Itoa(i+1)+"@taskrank", child.Props.Get(ical.PropUID).Value)
		summary, err := child.Props.Text(ical.PropSummary)
		require.NoError(t, err)
		assert.Equal(t, tasks[i].Title, summary)
		assert.Equal(t, strconv.Itoa(icalPriority(tasks[i].PriorityLevel)), child.Props.Get(ical.PropPriority).Value)

		due := child.Props.Get(ical.PropDue)
		if tasks[i].DueDate == nil {
			assert.Nil(t, due)
			continue
		}
		require.NotNil(t, due)
		assert.Equal(t, "20250604", due.Value)
	}
}
