// Package service runs one audit: load the table, aggregate the column.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/auditoria/internal/domain/audit/aggregator"
	"github.com/FACorreiaa/auditoria/internal/domain/audit/table"
	"github.com/FACorreiaa/auditoria/pkg/observability"
	"github.com/FACorreiaa/auditoria/pkg/tracing"
)

const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"

	stageLoad      = "load"
	stageAggregate = "aggregate"
)

// TableLoader reads an audit table from a path.
type TableLoader interface {
	Load(ctx context.Context, path string) (*table.Table, error)
}

// RunResult contains the result of an audit run
type RunResult struct {
	RunID    uuid.UUID
	Source   string
	Column   string
	Summary  aggregator.Summary
	Unparsed []int // zero-based row indexes that fell back to zero
	Duration time.Duration
}

// AuditService orchestrates loading and aggregation
type AuditService struct {
	loader  TableLoader
	logger  *slog.Logger
	metrics *observability.Metrics
	tracer  trace.Tracer
}

// NewAuditService creates a new audit service
func NewAuditService(loader TableLoader, logger *slog.Logger, metrics *observability.Metrics, tracer trace.Tracer) *AuditService {
	if tracer == nil {
		tracer = tracing.Tracer(nil)
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &AuditService{
		loader:  loader,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// Run loads path and aggregates column.
func (s *AuditService) Run(ctx context.Context, path, column string) (*RunResult, error) {
	runID := uuid.New()
	started := time.Now()
	logger := s.logger.With("run_id", runID, "source", path, "column", column)

	ctx, end := tracing.Stage(ctx, s.tracer, "audit",
		attribute.String("audit.run_id", runID.String()),
		attribute.String("audit.source", path),
		attribute.String("audit.column", column),
	)

	result, err := s.run(ctx, logger, path, column)
	end(err)

	if err != nil {
		s.metrics.RunsTotal.WithLabelValues(outcomeFailed).Inc()
		logger.Error("audit run failed", "error", err)
		return nil, err
	}

	result.RunID = runID
	result.Duration = time.Since(started)

	s.metrics.RunsTotal.WithLabelValues(outcomeSucceeded).Inc()
	s.metrics.NetTotal.Set(result.Summary.NetTotal)

	logger.Info("audit run completed",
		"rows", result.Summary.TotalRows,
		"sum_positive", result.Summary.SumPositive,
		"sum_negative", result.Summary.SumNegative,
		"net_total", result.Summary.NetTotal,
		"unparsed", len(result.Unparsed),
		"duration", result.Duration,
	)

	return result, nil
}

func (s *AuditService) run(ctx context.Context, logger *slog.Logger, path, column string) (*RunResult, error) {
	t, err := s.load(ctx, path)
	if err != nil {
		return nil, err
	}
	logger.Debug("table loaded", "rows", t.Len(), "columns", len(t.Columns))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis, err := s.aggregate(ctx, t, column)
	if err != nil {
		return nil, err
	}

	for _, idx := range analysis.Unparsed {
		cell := t.Rows[idx][column]
		logger.Debug("value could not be parsed, counted as zero", "row", idx+1, "value", cell.Value)
	}

	return &RunResult{
		Source:   path,
		Column:   column,
		Summary:  analysis.Summary,
		Unparsed: analysis.Unparsed,
	}, nil
}

func (s *AuditService) load(ctx context.Context, path string) (*table.Table, error) {
	start := time.Now()
	ctx, end := tracing.Stage(ctx, s.tracer, stageLoad, attribute.String("audit.source", path))

	t, err := s.loader.Load(ctx, path)
	end(err)
	s.metrics.ObserveStage(stageLoad, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return t, nil
}

func (s *AuditService) aggregate(ctx context.Context, t *table.Table, column string) (*aggregator.Analysis, error) {
	start := time.Now()
	_, end := tracing.Stage(ctx, s.tracer, stageAggregate,
		attribute.String("audit.column", column),
		attribute.Int("audit.rows", t.Len()),
	)

	analysis, err := aggregator.Analyze(t, column)
	end(err)
	s.metrics.ObserveStage(stageAggregate, start)
	if err != nil {
		return nil, err
	}

	s.metrics.RowsProcessed.Add(float64(analysis.Summary.TotalRows))
	s.metrics.UnparsedCells.Add(float64(len(analysis.Unparsed)))
	return analysis, nil
}
