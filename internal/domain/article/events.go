package article

import (
	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
)

// AggregateTypeArticle is the aggregate type name used in events
const AggregateTypeArticle = "Article"

// Event type constants
const (
	EventTypeArticleCreated = "ArticleCreated"
	EventTypeArticleUpdated = "ArticleUpdated"
	EventTypeArticleDeleted = "ArticleDeleted"
)

// ArticleCreatedEvent is raised when a new article is registered
type ArticleCreatedEvent struct {
	shared.BaseDomainEvent
	Name         string `json:"name"`
	Size         string `json:"size"`
	OpeningStock int    `json:"opening_stock"`
}

// NewArticleCreatedEvent creates a new ArticleCreatedEvent
func NewArticleCreatedEvent(a *Article) *ArticleCreatedEvent {
	return &ArticleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeArticleCreated, AggregateTypeArticle, a.ID),
		Name:            a.Name,
		Size:            a.Size,
		OpeningStock:    a.Quantity,
	}
}

// ArticleUpdatedEvent is raised when descriptive fields change
type ArticleUpdatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewArticleUpdatedEvent creates a new ArticleUpdatedEvent
func NewArticleUpdatedEvent(a *Article) *ArticleUpdatedEvent {
	return &ArticleUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeArticleUpdated, AggregateTypeArticle, a.ID),
		Name:            a.Name,
	}
}

// ArticleDeletedEvent is raised when an article is removed
type ArticleDeletedEvent struct {
	shared.BaseDomainEvent
}

// NewArticleDeletedEvent creates a new ArticleDeletedEvent
func NewArticleDeletedEvent(id uuid.UUID) *ArticleDeletedEvent {
	return &ArticleDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeArticleDeleted, AggregateTypeArticle, id),
	}
}
