package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/infrastructure/ratelimit"
	"github.com/felixgeelhaar/taskrank/pkg/config"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Code  string `json:"error_code"`
			Field string `json:"field"`
		} `json:"details"`
	} `json:"error"`
}

const sampleTasks = `[
	{"id": 1, "title": "Fix login bug", "due_date": "2025-06-03", "estimated_hours": 2, "importance": 8},
	{"id": 2, "title": "Write docs", "due_date": "2025-06-20", "estimated_hours": 3, "importance": 5, "dependencies": [1]},
	{"id": 3, "title": "Renew certificate", "due_date": "2025-05-30", "estimated_hours": 1, "importance": 9}
]`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, rules Rules) (*Server, *app.Container) {
	t.Helper()
	cfg := &config.Config{
		AppEnv:       "test",
		SQLitePath:   filepath.Join(t.TempDir(), "taskrank.db"),
		Strategy:     "smart_balance",
		SkipWeekends: true,
	}
	c, err := app.NewContainer(context.Background(), cfg, testLogger(), app.Options{Offline: true})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	deps := DependenciesFrom(c)
	deps.Now = func() time.Time { return time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC) }
	return NewServer(DefaultServerConfig(), deps, rules, testLogger()), c
}

func do(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && path != "/health" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, DefaultRules())
	rec, _ := do(t, s, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
}

func TestInfo(t *testing.T) {
	s, _ := newTestServer(t, DefaultRules())
	rec, env := do(t, s, http.MethodGet, "/api/v1/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var info Info
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, "taskrank", info.Name)
	assert.Contains(t, info.Strategies["smart_balance"], "(default)")
	assert.Contains(t, info.ErrorCodes, "ERR_CIRCULAR_DEPENDENCY")
}

func TestAnalyze(t *testing.T) {
	s, _ := newTestServer(t, DefaultRules())

	t.Run("ranks tasks", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/api/v1/tasks/analyze",
			`{"tasks": `+sampleTasks+`, "reference_date": "2025-06-02"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, env.Success)

		var data struct {
			Count    int    `json:"count"`
			Strategy string `json:"strategy"`
			Tasks    []struct {
				Title     string `json:"title"`
				IsOverdue bool   `json:"is_overdue"`
			} `json:"tasks"`
			Summary struct {
				OverdueCount int `json:"overdue_count"`
			} `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, 3, data.Count)
		assert.Equal(t, "smart_balance", data.Strategy)
		assert.Equal(t, "Renew certificate", data.Tasks[0].Title)
		assert.True(t, data.Tasks[0].IsOverdue)
		assert.Equal(t, 1, data.Summary.OverdueCount)
	})

	t.Run("empty task list", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/api/v1/tasks/analyze", `{"tasks": []}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_EMPTY_TASKS", env.Error.Code)
	})

	t.Run("invalid strategy", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/api/v1/tasks/analyze", `{"tasks": `+sampleTasks+`, "strategy": "random"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_INVALID_STRATEGY", env.Error.Code)
	})

	t.Run("invalid weights", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/api/v1/tasks/analyze", `{"tasks": `+sampleTasks+`, "weights": {"urgency": 1.5}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_INVALID_WEIGHTS", env.Error.Code)
	})

	t.Run("bad reference date", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/api/v1/tasks/analyze", `{"tasks": `+sampleTasks+`, "reference_date": "06/02/2025"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_INVALID_DATE", env.Error.Code)
	})

	t.Run("field errors are all reported", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/api/v1/tasks/analyze",
			`{"tasks": [{"id": 1, "title": "", "estimated_hours": 0, "importance": 11}]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Len(t, env.Error.Details, 3)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec, env := do(t, s, http.MethodPost, "/api/v1/tasks/analyze", `{"tasks": "nope"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "ERR_MISSING_FIELD", env.Error.Code)
	})
}

func TestSuggest(t *testing.T) {
	s, _ := newTestServer(t, DefaultRules())

	rec, env := do(t, s, http.MethodPost, "/api/v1/tasks/suggest",
		`{"tasks": `+sampleTasks+`, "reference_date": "2025-06-02", "count": 2, "max_hours": 8}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data struct {
		Tasks      []json.RawMessage `json:"suggested_tasks"`
		TotalHours float64           `json:"total_estimated_hours"`
		Strategy   string            `json:"strategy_used"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data.Tasks, 2)
	assert.LessOrEqual(t, data.TotalHours, 8.0)

	rec, env = do(t, s, http.MethodPost, "/api/v1/tasks/suggest", `{"tasks": `+sampleTasks+`, "count": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ERR_INVALID_PARAMETER", env.Error.Code)
}

func TestStrategies(t *testing.T) {
	s, _ := newTestServer(t, DefaultRules())
	rec, env := do(t, s, http.MethodGet, "/api/v1/tasks/strategies", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data strategiesResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "smart_balance", data.Default)
	require.Len(t, data.Strategies, 5)
	assert.Equal(t, "smart_balance", data.Strategies[0].Name)
	assert.Equal(t, "adaptive", data.Strategies[4].Name)
}

func TestTimeContextAndFatigue(t *testing.T) {
	s, _ := newTestServer(t, DefaultRules())

	rec, env := do(t, s, http.MethodGet, "/api/v1/tasks/time-context", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tc map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &tc))
	assert.Equal(t, "morning", tc["time_context"])
	assert.Equal(t, "2025-06-02T10:00:00", tc["current_time"])

	rec, env = do(t, s, http.MethodPost, "/api/v1/tasks/fatigue",
		`{"completed_tasks": [{"effort_hours": 3}, {"effort_hours": 3}], "next_task_effort": 5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var fatigue map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &fatigue))
	assert.Equal(t, 60.0, fatigue["fatigue_level"])
	assert.Equal(t, 2.0, fatigue["consecutive_heavy_tasks"])
}

func TestExport(t *testing.T) {
	s, _ := newTestServer(t, DefaultRules())

	rec, _ := do(t, s, http.MethodPost, "/api/v1/tasks/export/csv", `{"tasks": `+sampleTasks+`, "reference_date": "2025-06-02"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "task_analysis.csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Rank,Title,Priority Score"))

	rec, _ = do(t, s, http.MethodPost, "/api/v1/tasks/export/json", `{"tasks": `+sampleTasks+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, 3.0, doc["total_tasks"])

	rec, env := do(t, s, http.MethodPost, "/api/v1/tasks/export/xml", `{"tasks": `+sampleTasks+`}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ERR_INVALID_PARAMETER", env.Error.Code)
}

func TestRateLimit(t *testing.T) {
	rules := Rules{
		Analyze: ratelimit.Rule{Limit: 2, Window: time.Hour},
		Export:  ratelimit.Rule{Limit: 1, Window: time.Hour},
	}
	s, c := newTestServer(t, rules)
	body := `{"tasks": ` + sampleTasks + `}`

	for i := 0; i < 2; i++ {
		rec, _ := do(t, s, http.MethodPost, "/api/v1/tasks/analyze", body)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, env := do(t, s, http.MethodPost, "/api/v1/tasks/suggest", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeRateLimited, env.Error.Code)

	rec, _ = do(t, s, http.MethodPost, "/api/v1/tasks/export/csv", body)
	assert.Equal(t, http.StatusOK, rec.Code, "export has its own quota")

	snapshot := c.Metrics.Snapshot()
	assert.Equal(t, int64(1), snapshot.Counters["taskrank.http.rate_limited,bucket=analyze"])
}

func TestBacklog(t *testing.T) {
	s, _ := newTestServer(t, DefaultRules())

	rec, env := do(t, s, http.MethodPost, "/api/v1/backlog/",
		`{"title": "Fix login bug", "due_date": "2025-06-03", "estimated_hours": 2, "importance": 8}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))

	rec, env = do(t, s, http.MethodPost, "/api/v1/backlog/",
		`{"title": "Blocked", "estimated_hours": 1, "importance": 5, "dependencies": [999]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ERR_INVALID_DEPENDENCY", env.Error.Code)

	rec, env = do(t, s, http.MethodPost, "/api/v1/backlog/import",
		`{"tasks": [{"title": "Write docs", "estimated_hours": 3, "importance": 5}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env = do(t, s, http.MethodGet, "/api/v1/backlog/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 2)

	rec, env = do(t, s, http.MethodPost, "/api/v1/backlog/analyze", `{"strategy": "high_impact"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var analysis struct {
		Count    int    `json:"count"`
		Strategy string `json:"strategy"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &analysis))
	assert.Equal(t, 2, analysis.Count)
	assert.Equal(t, "high_impact", analysis.Strategy)

	path := "/api/v1/backlog/" + jsonNumber(created.ID)
	rec, _ = do(t, s, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, s, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, CodeNotFound, env.Error.Code)

	rec, _ = do(t, s, http.MethodDelete, "/api/v1/backlog/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorrelationHeader(t *testing.T) {
	s, _ := newTestServer(t, DefaultRules())
	id := "5f0c6a52-3d7a-4d8e-9a43-2c1f3b7e9d10"

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/strategies", nil)
	req.Header.Set(correlationHeader, id)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(correlationHeader))

	rec, _ = do(t, s, http.MethodGet, "/api/v1/tasks/strategies", "")
	assert.NotEmpty(t, rec.Header().Get(correlationHeader))
}

func jsonNumber(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
