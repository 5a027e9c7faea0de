package queries

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

func (m *mockPublisher) Close() error { return nil }

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) IDs() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Strategies(ctx context.Context, engineID string) ([]sdk.StrategyDefinition, error) {
	args := m.Called(ctx, engineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sdk.StrategyDefinition), args.Error(1)
}

func (m *mockExecutor) Weigh(ctx context.Context, engineID string, req sdk.WeighRequest) (sdk.Weights, error) {
	args := m.Called(ctx, engineID, req)
	return args.Get(0).(sdk.Weights), args.Error(1)
}

type mockHolidaySource struct {
	mock.Mock
}

func (m *mockHolidaySource) Holidays(ctx context.Context, from, to calendar.Date) ([]calendar.Date, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]calendar.Date), args.Error(1)
}

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id int64) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) List(ctx context.Context) ([]task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type stubProfile struct {
	strategies []scoring.StrategyInfo
	holidays   []calendar.Date
	hasDates   bool
}

func (p stubProfile) Strategy(name string) (scoring.StrategyInfo, bool) {
	for _, s := range p.strategies {
		if s.Name == name {
			return s, true
		}
	}
	return scoring.StrategyInfo{}, false
}

func (p stubProfile) StrategyNames() []string {
	names := make([]string, len(p.strategies))
	for i, s := range p.strategies {
		names[i] = s.Name
	}
	return names
}

func (p stubProfile) HolidayDates() ([]calendar.Date, bool) {
	return p.holidays, p.hasDates
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func rawTask(id int64, title, due string, hours float64, importance int, deps ...int64) task.RawTask {
	r := task.RawTask{
		ID:             ptr(id),
		Title:          ptr(title),
		EstimatedHours: ptr(hours),
		Importance:     ptr(importance),
		Dependencies:   deps,
	}
	if due != "" {
		r.DueDate = ptr(due)
	}
	return r
}
