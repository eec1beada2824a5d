package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/auditoria/internal/domain/audit/loader"
	"github.com/FACorreiaa/auditoria/internal/domain/audit/report"
	"github.com/FACorreiaa/auditoria/internal/domain/audit/service"
	"github.com/FACorreiaa/auditoria/internal/domain/audit/table"
	"github.com/FACorreiaa/auditoria/pkg/config"
	"github.com/FACorreiaa/auditoria/pkg/observability"
	"github.com/FACorreiaa/auditoria/pkg/tracing"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger
	Out    io.Writer

	// Observability
	Metrics        *observability.Metrics
	TracerProvider trace.TracerProvider
	shutdownTraces tracing.ShutdownFunc

	// Report
	Formatter *report.Formatter

	// Services
	Loader       *loader.Loader
	AuditService *service.AuditService
}

// InitDependencies initializes all application dependencies. Progress and
// report lines are written to out.
func InitDependencies(cfg *config.Config, logger *slog.Logger, out io.Writer) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
		Out:    out,
	}

	if err := deps.initObservability(); err != nil {
		return nil, fmt.Errorf("failed to init observability: %w", err)
	}

	deps.initReport()
	deps.initServices()

	logger.Debug("all dependencies initialized successfully")

	return deps, nil
}

// initObservability sets up the metrics registry and the tracer provider
func (d *Dependencies) initObservability() error {
	d.Metrics = observability.NewMetrics()

	tp, shutdown, err := tracing.NewProvider(tracing.Config{
		Stdout: d.Config.Tracing.Stdout,
		Writer: os.Stderr,
	})
	if err != nil {
		return err
	}
	d.TracerProvider = tp
	d.shutdownTraces = shutdown

	return nil
}

// initReport resolves the report locale, falling back to plain numbers
func (d *Dependencies) initReport() {
	format, ok := report.ForLocale(d.Config.Report.Locale)
	if !ok {
		d.Logger.Warn("locale not supported, using plain number format", "locale", d.Config.Report.Locale)
		fmt.Fprintf(d.Out, "Localidade '%s' não encontrada. Usando formatação padrão.\n", d.Config.Report.Locale)
	}
	d.Formatter = report.NewFormatter(format)
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() {
	d.Loader = loader.New(loader.Options{
		Sheet:     d.Config.Input.Sheet,
		Delimiter: d.Config.Input.Delimiter(),
	}, d.Logger)

	d.AuditService = service.NewAuditService(
		&progressLoader{next: d.Loader, out: d.Out},
		d.Logger,
		d.Metrics,
		tracing.Tracer(d.TracerProvider),
	)
}

// Cleanup flushes pending spans
func (d *Dependencies) Cleanup() {
	if d.shutdownTraces != nil {
		if err := d.shutdownTraces(context.Background()); err != nil {
			d.Logger.Warn("failed to shut down tracer provider", "error", err)
		}
	}
	d.Logger.Debug("cleanup completed")
}

// progressLoader reports a successful load to the operator.
type progressLoader struct {
	next service.TableLoader
	out  io.Writer
}

func (p *progressLoader) Load(ctx context.Context, path string) (*table.Table, error) {
	t, err := p.next.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(p.out, "Arquivo carregado com sucesso!")
	return t, nil
}
