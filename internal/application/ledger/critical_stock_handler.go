package ledger

import (
	"context"
	"fmt"

	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockAlert is a critical stock notification
type StockAlert struct {
	ArticleID string `json:"article_id"`
	Balance   int    `json:"balance"`
	Threshold int    `json:"threshold"`
	AlertType string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// StockAlertNotifier delivers stock alerts
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// CriticalStockHandler handles StockCritical events raised by the ledger
type CriticalStockHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewCriticalStockHandler creates a new handler for critical stock events
func NewCriticalStockHandler(logger *zap.Logger) *CriticalStockHandler {
	return &CriticalStockHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending alerts
func (h *CriticalStockHandler) WithNotifier(notifier StockAlertNotifier) *CriticalStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *CriticalStockHandler) EventTypes() []string {
	return []string{ledger.EventTypeStockCritical}
}

// Handle processes a StockCriticalEvent
func (h *CriticalStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	critical, ok := event.(*ledger.StockCriticalEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ledger.EventTypeStockCritical),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ledger.EventTypeStockCritical, event.EventType())
	}

	alertType := "low_stock"
	if critical.IsOutOfStock() {
		alertType = "out_of_stock"
	}

	h.logger.Warn("critical stock level",
		zap.String("article_id", event.AggregateID().String()),
		zap.Int("balance", critical.Balance),
		zap.Int("threshold", critical.Threshold),
		zap.String("alert_type", alertType),
	)

	if h.notifier == nil {
		return nil
	}
	alert := StockAlert{
		ArticleID: event.AggregateID().String(),
		Balance:   critical.Balance,
		Threshold: critical.Threshold,
		AlertType: alertType,
	}
	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		// notification failure shouldn't fail the event handling
		h.logger.Error("failed to send stock alert",
			zap.String("article_id", alert.ArticleID),
			zap.Error(err),
		)
	}
	return nil
}

var _ shared.EventHandler = (*CriticalStockHandler)(nil)
