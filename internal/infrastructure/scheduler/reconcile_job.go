package scheduler

import (
	"context"

	ledgerapp "github.com/mpvestiario/backend/internal/application/ledger"
	"github.com/mpvestiario/backend/internal/infrastructure/logger"
	"github.com/mpvestiario/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReconcileJobName is the registered name of the stock reconciliation job
const ReconcileJobName = "stock_reconciliation"

// StockChecker runs one reconciliation pass
type StockChecker interface {
	Run(ctx context.Context) (*ledgerapp.ReconciliationReport, error)
}

// ReconcileJob checks stock conservation on a schedule. Drift is reported
// by the checker itself; the job only adds tracing and a summary line.
type ReconcileJob struct {
	checker StockChecker
	logger  *zap.Logger
}

// NewReconcileJob creates a new ReconcileJob
func NewReconcileJob(checker StockChecker, l *zap.Logger) *ReconcileJob {
	if l == nil {
		l = zap.NewNop()
	}
	return &ReconcileJob{checker: checker, logger: l}
}

func (j *ReconcileJob) Run(ctx context.Context) (err error) {
	ctx = logger.WithOperation(logger.WithContext(ctx, j.logger), "reconcile")
	ctx, span := telemetry.StartSpan(ctx, "scheduler.reconcile")
	defer func() { telemetry.EndSpan(span, err) }()

	var report *ledgerapp.ReconciliationReport
	telemetry.WithProfilingLabels(ctx, map[string]string{"job": ReconcileJobName}, func(ctx context.Context) {
		report, err = j.checker.Run(ctx)
	})
	if err != nil {
		return err
	}

	span.SetAttributes(
		attribute.Int("ledger.articles", report.Articles),
		attribute.Int("ledger.drifts", len(report.Drifts)),
	)
	log := logger.L(ctx)
	if report.Consistent {
		log.Info("Stock ledger consistent", zap.Int("articles", report.Articles))
	} else {
		log.Warn("Stock ledger drift", zap.Int("articles", report.Articles), zap.Int("drifts", len(report.Drifts)))
	}
	return nil
}
