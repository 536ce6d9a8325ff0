package article

import (
	"time"

	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/article"
	"github.com/shopspring/decimal"
)

// CreateArticleRequest represents a request to create an article
type CreateArticleRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Group        string          `json:"group" binding:"max=200"`
	Size         string          `json:"size" binding:"required,min=1,max=20"`
	Supplier     string          `json:"supplier" binding:"max=200"`
	SupplierCode string          `json:"supplier_code" binding:"max=64"`
	Season       string          `json:"season" binding:"required,season"`
	Type         string          `json:"type" binding:"required,article_type"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	// Quantity is the opening stock
	Quantity int    `json:"quantity" binding:"min=0"`
	PhotoURL string `json:"photo_url" binding:"omitempty,url"`
}

// UpdateArticleRequest updates the descriptive fields of an article.
// Stock is changed only through the ledger.
type UpdateArticleRequest struct {
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Group        string          `json:"group" binding:"max=200"`
	Size         string          `json:"size" binding:"required,min=1,max=20"`
	Supplier     string          `json:"supplier" binding:"max=200"`
	SupplierCode string          `json:"supplier_code" binding:"max=64"`
	Season       string          `json:"season" binding:"required,season"`
	Type         string          `json:"type" binding:"required,article_type"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	PhotoURL     string          `json:"photo_url" binding:"omitempty,url"`
}

// ArticleListFilter holds article list query parameters
type ArticleListFilter struct {
	Search       string `form:"search"`
	Type         string `form:"type" binding:"omitempty,article_type"`
	Season       string `form:"season" binding:"omitempty,season"`
	Group        string `form:"group"`
	CriticalOnly bool   `form:"critical"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=500"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ArticleResponse represents an article in API responses
type ArticleResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Group        string          `json:"group,omitempty"`
	Size         string          `json:"size"`
	Supplier     string          `json:"supplier,omitempty"`
	SupplierCode string          `json:"supplier_code,omitempty"`
	Season       string          `json:"season"`
	Type         string          `json:"type"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	StockValue   decimal.Decimal `json:"stock_value"`
	Critical     bool            `json:"critical"`
	PhotoURL     string          `json:"photo_url,omitempty"`
	Version      int             `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ArticleGroupResponse is a set of size variants sharing a group key
type ArticleGroupResponse struct {
	Key           string            `json:"key"`
	Type          string            `json:"type"`
	Season        string            `json:"season"`
	TotalQuantity int               `json:"total_quantity"`
	Variants      []ArticleResponse `json:"variants"`
}

// PhotoUploadResponse is returned after a photo upload
type PhotoUploadResponse struct {
	ArticleID uuid.UUID `json:"article_id"`
	PhotoURL  string    `json:"photo_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToArticleResponse converts a domain article to its response form
func ToArticleResponse(a *article.Article, threshold int) ArticleResponse {
	return ArticleResponse{
		ID:           a.ID,
		Name:         a.Name,
		Group:        a.Group,
		Size:         a.Size,
		Supplier:     a.Supplier,
		SupplierCode: a.SupplierCode,
		Season:       string(a.Season),
		Type:         string(a.Type),
		UnitPrice:    a.UnitPrice,
		Quantity:     a.Quantity,
		StockValue:   a.StockValue(),
		Critical:     a.IsCritical(threshold),
		PhotoURL:     a.PhotoURL,
		Version:      a.Version,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (r CreateArticleRequest) details() article.Details {
	return article.Details{
		Name:         r.Name,
		Group:        r.Group,
		Size:         r.Size,
		Supplier:     r.Supplier,
		SupplierCode: r.SupplierCode,
		Season:       article.Season(r.Season),
		Type:         article.Type(r.Type),
		UnitPrice:    r.UnitPrice,
		PhotoURL:     r.PhotoURL,
	}
}

func (r UpdateArticleRequest) details() article.Details {
	return article.Details{
		Name:         r.Name,
		Group:        r.Group,
		Size:         r.Size,
		Supplier:     r.Supplier,
		SupplierCode: r.SupplierCode,
		Season:       article.Season(r.Season),
		Type:         article.Type(r.Type),
		UnitPrice:    r.UnitPrice,
		PhotoURL:     r.PhotoURL,
	}
}
