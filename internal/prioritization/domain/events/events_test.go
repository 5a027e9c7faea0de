package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnalysisCompleted(t *testing.T) {
	e := NewAnalysisCompleted("deadline_driven", "2025-06-02", 4, 1, 2, true)

	assert.Equal(t, RoutingKeyAnalysisCompleted, e.RoutingKey())
	assert.NotEqual(t, [16]byte{}, [16]byte(e.EventID()))

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"strategy": "deadline_driven",
		"reference_date": "2025-06-02",
		"task_count": 4,
		"high_priority_count": 1,
		"overdue_count": 2,
		"circular_dependencies_detected": true
	}`, string(data))
}

func TestNewSuggestionGenerated_EmptySlices(t *testing.T) {
	e := NewSuggestionGenerated("fastest_wins", "2025-06-02", nil, nil, 0)
	assert.Equal(t, RoutingKeySuggestionGenerated, e.RoutingKey())

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"task_ids":[]`)
	assert.Contains(t, string(data), `"titles":[]`)
}
