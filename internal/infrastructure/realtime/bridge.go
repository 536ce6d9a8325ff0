package realtime

import (
	"context"

	"github.com/mpvestiario/backend/internal/domain/article"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/mpvestiario/backend/internal/domain/personnel"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EventBridge turns domain events raised by the services into change messages
type EventBridge struct {
	notifier shared.ChangeNotifier
	logger   *zap.Logger
}

// NewEventBridge creates a new EventBridge
func NewEventBridge(notifier shared.ChangeNotifier, logger *zap.Logger) *EventBridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBridge{notifier: notifier, logger: logger}
}

// EventTypes returns the event types that produce change messages
func (b *EventBridge) EventTypes() []string {
	return []string{
		article.EventTypeArticleCreated,
		article.EventTypeArticleUpdated,
		article.EventTypeArticleDeleted,
		personnel.EventTypePersonCreated,
		personnel.EventTypePersonUpdated,
		personnel.EventTypePersonDeleted,
		ledger.EventTypeAssignmentCommitted,
		ledger.EventTypeAssignmentQuantityChanged,
		ledger.EventTypeAssignmentDeleted,
		ledger.EventTypeStockAdjusted,
	}
}

// Handle publishes the change message for event. Delivery failures are
// logged and swallowed: the change feed is a refresh hint, and the write
// that raised the event has already committed.
func (b *EventBridge) Handle(ctx context.Context, event shared.DomainEvent) error {
	msg, ok := toChangeMessage(event)
	if !ok {
		return nil
	}
	if err := b.notifier.Publish(ctx, msg); err != nil {
		b.logger.Warn("Failed to publish change message",
			zap.String("event_type", event.EventType()),
			zap.String("table", msg.Table),
			zap.Error(err))
	}
	return nil
}

func toChangeMessage(event shared.DomainEvent) (shared.ChangeMessage, bool) {
	id := event.AggregateID()
	switch e := event.(type) {
	case *ledger.AssignmentCommittedEvent:
		return shared.NewChangeMessage(shared.TableAssignments, shared.ChangeInsert, id).WithArticle(e.ArticleID), true
	case *ledger.AssignmentQuantityChangedEvent:
		return shared.NewChangeMessage(shared.TableAssignments, shared.ChangeUpdate, id).WithArticle(e.ArticleID), true
	case *ledger.AssignmentDeletedEvent:
		return shared.NewChangeMessage(shared.TableAssignments, shared.ChangeDelete, id).WithArticle(e.ArticleID), true
	case *ledger.StockAdjustedEvent:
		return shared.NewChangeMessage(shared.TableArticles, shared.ChangeUpdate, id).WithArticle(id), true
	}

	switch event.EventType() {
	case article.EventTypeArticleCreated:
		return shared.NewChangeMessage(shared.TableArticles, shared.ChangeInsert, id).WithArticle(id), true
	case article.EventTypeArticleUpdated:
		return shared.NewChangeMessage(shared.TableArticles, shared.ChangeUpdate, id).WithArticle(id), true
	case article.EventTypeArticleDeleted:
		return shared.NewChangeMessage(shared.TableArticles, shared.ChangeDelete, id).WithArticle(id), true
	case personnel.EventTypePersonCreated:
		return shared.NewChangeMessage(shared.TablePeople, shared.ChangeInsert, id), true
	case personnel.EventTypePersonUpdated:
		return shared.NewChangeMessage(shared.TablePeople, shared.ChangeUpdate, id), true
	case personnel.EventTypePersonDeleted:
		return shared.NewChangeMessage(shared.TablePeople, shared.ChangeDelete, id), true
	}
	return shared.ChangeMessage{}, false
}

// Ensure EventBridge implements shared.EventHandler
var _ shared.EventHandler = (*EventBridge)(nil)
