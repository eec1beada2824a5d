package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/FACorreiaa/auditoria/internal/domain/audit/table"
	"github.com/FACorreiaa/auditoria/internal/domain/common"
	"github.com/FACorreiaa/auditoria/pkg/observability"
)

// MockTableLoader is a mock implementation of TableLoader
type MockTableLoader struct {
	mock.Mock
}

func (m *MockTableLoader) Load(ctx context.Context, path string) (*table.Table, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*table.Table), args.Error(1)
}

type testEnv struct {
	service  *AuditService
	loader   *MockTableLoader
	metrics  *observability.Metrics
	recorder *tracetest.SpanRecorder
}

func setupAuditServiceTest() testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	metrics := observability.NewMetrics()
	loader := new(MockTableLoader)

	return testEnv{
		service:  NewAuditService(loader, logger, metrics, tp.Tracer("test")),
		loader:   loader,
		metrics:  metrics,
		recorder: recorder,
	}
}

func sampleTable() *table.Table {
	return table.New(
		[]string{"ID", "Diferença"},
		[][]string{
			{"1", "R$ 100,00"},
			{"2", "R$ -50,00"},
			{"3", "R$ 200,00"},
			{"4", "n/d"},
			{"5", ""},
		},
	)
}

func spanNames(spans []sdktrace.ReadOnlySpan) []string {
	names := make([]string, len(spans))
	for i, s := range spans {
		names[i] = s.Name()
	}
	return names
}

func TestAuditService_Run(t *testing.T) {
	env := setupAuditServiceTest()
	ctx := context.Background()
	env.loader.On("Load", mock.Anything, "dados.xlsx").Return(sampleTable(), nil).Once()

	result, err := env.service.Run(ctx, "dados.xlsx", "Diferença")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.RunID.String())
	assert.Equal(t, "dados.xlsx", result.Source)
	assert.Equal(t, "Diferença", result.Column)
	assert.Equal(t, 5, result.Summary.TotalRows)
	assert.InDelta(t, 300.0, result.Summary.SumPositive, 1e-9)
	assert.InDelta(t, -50.0, result.Summary.SumNegative, 1e-9)
	assert.InDelta(t, 250.0, result.Summary.NetTotal, 1e-9)
	assert.Equal(t, []int{3}, result.Unparsed)
	assert.Positive(t, result.Duration)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.RunsTotal.WithLabelValues(outcomeSucceeded)))
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.RunsTotal.WithLabelValues(outcomeFailed)))
	assert.Equal(t, 5.0, testutil.ToFloat64(env.metrics.RowsProcessed))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.UnparsedCells))
	assert.Equal(t, 250.0, testutil.ToFloat64(env.metrics.NetTotal))
	assert.Equal(t, 2, testutil.CollectAndCount(env.metrics.StageDuration))

	spans := env.recorder.Ended()
	assert.ElementsMatch(t, []string{"load", "aggregate", "audit"}, spanNames(spans))
	for _, s := range spans {
		assert.Equal(t, codes.Ok, s.Status().Code, s.Name())
	}

	env.loader.AssertExpectations(t)
}

func TestAuditService_Run_StageSpansAreChildren(t *testing.T) {
	env := setupAuditServiceTest()
	env.loader.On("Load", mock.Anything, "dados.csv").Return(sampleTable(), nil)

	_, err := env.service.Run(context.Background(), "dados.csv", "Diferença")
	require.NoError(t, err)

	var root sdktrace.ReadOnlySpan
	for _, s := range env.recorder.Ended() {
		if s.Name() == "audit" {
			root = s
		}
	}
	require.NotNil(t, root)

	for _, s := range env.recorder.Ended() {
		if s.Name() == "audit" {
			continue
		}
		assert.Equal(t, root.SpanContext().SpanID(), s.Parent().SpanID(), s.Name())
	}
}

func TestAuditService_Run_InvalidColumn(t *testing.T) {
	env := setupAuditServiceTest()
	env.loader.On("Load", mock.Anything, "dados.xlsx").Return(sampleTable(), nil)

	result, err := env.service.Run(context.Background(), "dados.xlsx", "Diferenca")
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidColumn)
	assert.Contains(t, err.Error(), "Diferença")

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.RunsTotal.WithLabelValues(outcomeFailed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.RunsTotal.WithLabelValues(outcomeSucceeded)))
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.RowsProcessed))

	for _, s := range env.recorder.Ended() {
		if s.Name() == "aggregate" || s.Name() == "audit" {
			assert.Equal(t, codes.Error, s.Status().Code, s.Name())
		}
	}
}

func TestAuditService_Run_LoadError(t *testing.T) {
	env := setupAuditServiceTest()
	env.loader.On("Load", mock.Anything, "faltando.xlsx").Return(nil, common.ErrFileNotFound)

	_, err := env.service.Run(context.Background(), "faltando.xlsx", "Diferença")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrFileNotFound)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.RunsTotal.WithLabelValues(outcomeFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(env.metrics.StageDuration))
	assert.ElementsMatch(t, []string{"load", "audit"}, spanNames(env.recorder.Ended()))
}

func TestAuditService_Run_CancelledAfterLoad(t *testing.T) {
	env := setupAuditServiceTest()
	ctx, cancel := context.WithCancel(context.Background())

	env.loader.On("Load", mock.Anything, "dados.xlsx").
		Run(func(mock.Arguments) { cancel() }).
		Return(sampleTable(), nil)

	_, err := env.service.Run(ctx, "dados.xlsx", "Diferença")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.RowsProcessed))
}

func TestNewAuditService_Defaults(t *testing.T) {
	loader := new(MockTableLoader)
	loader.On("Load", mock.Anything, "dados.xlsx").Return(sampleTable(), nil)

	svc := NewAuditService(loader, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil)
	result, err := svc.Run(context.Background(), "dados.xlsx", "Diferença")
	require.NoError(t, err)
	assert.Equal(t, 5, result.Summary.TotalRows)
}
