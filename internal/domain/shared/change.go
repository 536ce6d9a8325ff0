package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChangeAction is the kind of row change carried by a ChangeMessage
type ChangeAction string

const (
	ChangeInsert ChangeAction = "INSERT"
	ChangeUpdate ChangeAction = "UPDATE"
	ChangeDelete ChangeAction = "DELETE"
)

// Tables that publish change messages
const (
	TableArticles    = "articles"
	TablePeople      = "people"
	TableAssignments = "assignments"
)

// ChangeMessage tells subscribers that a row changed and should be refetched.
// It is a refresh hint only: nothing in the ledger depends on it being delivered.
type ChangeMessage struct {
	Table  string       `json:"table"`
	Action ChangeAction `json:"action"`
	ID     uuid.UUID    `json:"id"`
	// ArticleID is set for assignment changes so stock views can refresh too
	ArticleID *uuid.UUID `json:"article_id,omitempty"`
	// Timestamp is Unix nanoseconds
	Timestamp int64 `json:"timestamp"`
}

// NewChangeMessage creates a change message stamped with the current time
func NewChangeMessage(table string, action ChangeAction, id uuid.UUID) ChangeMessage {
	return ChangeMessage{
		Table:     table,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UnixNano(),
	}
}

// WithArticle returns a copy of the message referencing an article
func (m ChangeMessage) WithArticle(articleID uuid.UUID) ChangeMessage {
	m.ArticleID = &articleID
	return m
}

// ChangeNotifier distributes change messages to subscribers
type ChangeNotifier interface {
	// Publish sends a change message to all subscribers.
	Publish(ctx context.Context, msg ChangeMessage) error

	// Subscribe invokes callback for every received message.
	// It blocks until ctx is cancelled or the notifier is closed.
	Subscribe(ctx context.Context, callback func(msg ChangeMessage)) error

	// Close releases any resources held by the notifier.
	Close() error
}
