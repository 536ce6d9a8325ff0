package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// CommitAssignRequest issues units of an article to a person
type CommitAssignRequest struct {
	PersonID     uuid.UUID  `json:"person_id" binding:"required"`
	ArticleID    uuid.UUID  `json:"article_id" binding:"required"`
	Quantity     int        `json:"quantity" binding:"required,min=1"`
	DeliveryDate *time.Time `json:"delivery_date"`
}

// CommitEditRequest changes the quantity of an existing assignment
type CommitEditRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// AdjustStockRequest restocks (positive delta) or writes off (negative delta) an article
type AdjustStockRequest struct {
	Delta int    `json:"delta" binding:"required"`
	Note  string `json:"note" binding:"max=255"`
}

// AssignmentResponse represents an assignment in API responses
type AssignmentResponse struct {
	ID           uuid.UUID        `json:"id"`
	PersonID     uuid.UUID        `json:"person_id"`
	ArticleID    uuid.UUID        `json:"article_id"`
	Quantity     int              `json:"quantity"`
	DeliveryDate time.Time        `json:"delivery_date"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
	TotalValue   decimal.Decimal  `json:"total_value"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// CommitResponse is returned by assign and edit
type CommitResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
	// ArticleStock is the article quantity after the commit
	ArticleStock int `json:"article_stock"`
}

// DeleteResponse is returned by delete
type DeleteResponse struct {
	AssignmentID     uuid.UUID `json:"assignment_id"`
	ArticleID        uuid.UUID `json:"article_id"`
	RestoredQuantity int       `json:"restored_quantity"`
	ArticleStock     int       `json:"article_stock"`
}

// AdjustStockResponse is returned by a manual stock adjustment
type AdjustStockResponse struct {
	ArticleID    uuid.UUID `json:"article_id"`
	Delta        int       `json:"delta"`
	ArticleStock int       `json:"article_stock"`
}

// HistoryQuery holds history list parameters
type HistoryQuery struct {
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	PersonID  *uuid.UUID `form:"person_id"`
	ArticleID *uuid.UUID `form:"article_id"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
}

// HistoryEntryResponse is a row of the delivery history
type HistoryEntryResponse struct {
	ID           uuid.UUID       `json:"id"`
	PersonID     uuid.UUID       `json:"person_id"`
	PersonName   string          `json:"person_name"`
	ArticleID    uuid.UUID       `json:"article_id"`
	ArticleName  string          `json:"article_name"`
	ArticleGroup string          `json:"article_group,omitempty"`
	ArticleSize  string          `json:"article_size"`
	PhotoURL     string          `json:"photo_url,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalValue   decimal.Decimal `json:"total_value"`
	DeliveryDate time.Time       `json:"delivery_date"`
}

// StockMovementResponse is a row of an article's stock journal
type StockMovementResponse struct {
	ID           uuid.UUID  `json:"id"`
	ArticleID    uuid.UUID  `json:"article_id"`
	AssignmentID *uuid.UUID `json:"assignment_id,omitempty"`
	Type         string     `json:"type"`
	Delta        int        `json:"delta"`
	Balance      int        `json:"balance"`
	Note         string     `json:"note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// ToAssignmentResponse converts a domain assignment to its response form
func ToAssignmentResponse(a *ledger.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           a.ID,
		PersonID:     a.PersonID,
		ArticleID:    a.ArticleID,
		Quantity:     a.Quantity,
		DeliveryDate: a.DeliveryDate,
		UnitPrice:    a.UnitPrice,
		TotalValue:   a.TotalValue(),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// ToHistoryEntryResponse converts a history row
func ToHistoryEntryResponse(h ledger.HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		ID:           h.ID,
		PersonID:     h.PersonID,
		PersonName:   h.PersonName,
		ArticleID:    h.ArticleID,
		ArticleName:  h.ArticleName,
		ArticleGroup: h.ArticleGroup,
		ArticleSize:  h.ArticleSize,
		PhotoURL:     h.PhotoURL,
		Quantity:     h.Quantity,
		UnitPrice:    h.UnitPrice,
		TotalValue:   h.TotalValue(),
		DeliveryDate: h.DeliveryDate,
	}
}

// ToStockMovementResponse converts a journal entry
func ToStockMovementResponse(m ledger.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:           m.ID,
		ArticleID:    m.ArticleID,
		AssignmentID: m.AssignmentID,
		Type:         string(m.Type),
		Delta:        m.Delta,
		Balance:      m.Balance,
		Note:         m.Note,
		CreatedAt:    m.CreatedAt,
	}
}
