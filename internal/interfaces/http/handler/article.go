package handler

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	articleapp "github.com/mpvestiario/backend/internal/application/article"
	ledgerapp "github.com/mpvestiario/backend/internal/application/ledger"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/interfaces/http/dto"
)

// photoFormField is the multipart field carrying an uploaded photo
const photoFormField = "photo"

// ArticleService is the article catalogue used by ArticleHandler
type ArticleService interface {
	Create(ctx context.Context, req articleapp.CreateArticleRequest) (*articleapp.ArticleResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*articleapp.ArticleResponse, error)
	LookupByCode(ctx context.Context, code string) (*articleapp.ArticleResponse, error)
	List(ctx context.Context, filter articleapp.ArticleListFilter) ([]articleapp.ArticleResponse, int64, error)
	Groups(ctx context.Context, filter articleapp.ArticleListFilter) ([]articleapp.ArticleGroupResponse, error)
	Update(ctx context.Context, id uuid.UUID, req articleapp.UpdateArticleRequest) (*articleapp.ArticleResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadPhoto(ctx context.Context, id uuid.UUID, contentType string, data []byte) (*articleapp.PhotoUploadResponse, error)
}

// StockService is the part of the stock ledger used by ArticleHandler
type StockService interface {
	AdjustStock(ctx context.Context, articleID uuid.UUID, req ledgerapp.AdjustStockRequest) (*ledgerapp.AdjustStockResponse, error)
	ListMovements(ctx context.Context, articleID uuid.UUID, filter shared.Filter) ([]ledgerapp.StockMovementResponse, int64, error)
}

// ArticleHandler handles article endpoints
type ArticleHandler struct {
	BaseHandler
	articles ArticleService
	stock    StockService
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articles ArticleService, stock StockService) *ArticleHandler {
	return &ArticleHandler{articles: articles, stock: stock}
}

// Create adds an article. Its opening quantity is journalled as a receipt.
// POST /articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req articleapp.CreateArticleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.articles.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns a page of articles.
// GET /articles?search=&type=&season=&group=&critical=&page=&page_size=&order_by=&order_dir=
func (h *ArticleHandler) List(c *gin.Context) {
	var filter articleapp.ArticleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	filter.Page, filter.PageSize = effectivePage(filter.Page, filter.PageSize)
	articles, total, err := h.articles.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, articles, total, filter.Page, filter.PageSize)
}

// Groups returns articles grouped with their size variants.
// GET /articles/groups
func (h *ArticleHandler) Groups(c *gin.Context) {
	var filter articleapp.ArticleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	groups, err := h.articles.Groups(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, groups)
}

// Lookup finds an article by supplier code.
// GET /articles/lookup?code=
func (h *ArticleHandler) Lookup(c *gin.Context) {
	resp, err := h.articles.LookupByCode(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID returns one article.
// GET /articles/:id
func (h *ArticleHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	resp, err := h.articles.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Update replaces the descriptive fields of an article. Quantity is not editable here.
// PUT /articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req articleapp.UpdateArticleRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.articles.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an article that no assignment references.
// DELETE /articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.articles.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Restock adjusts the stock of an article by a signed delta.
// POST /articles/:id/restock
func (h *ArticleHandler) Restock(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req ledgerapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.stock.AdjustStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// movementParams are the query parameters of the stock journal
type movementParams struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Movements returns the stock journal of an article, newest first.
// GET /articles/:id/movements
func (h *ArticleHandler) Movements(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var params movementParams
	if !h.bindQuery(c, &params) {
		return
	}

	filter := shared.DefaultFilter()
	if params.Page > 0 {
		filter.Page = params.Page
	}
	if params.PageSize > 0 {
		filter.PageSize = params.PageSize
	}

	movements, total, err := h.stock.ListMovements(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, movements, total, filter.Page, filter.PageSize)
}

// UploadPhoto stores a multipart "photo" upload as the article photo.
// POST /articles/:id/photo
func (h *ArticleHandler) UploadPhoto(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile(photoFormField)
	if err != nil {
		h.BadRequest(c, "Multipart field '"+photoFormField+"' is required")
		return
	}
	defer file.Close()

	if header.Size > articleapp.MaxPhotoSize {
		h.ErrorWithCode(c, dto.ErrCodeValidation, "Photo is too large")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, articleapp.MaxPhotoSize+1))
	if err != nil {
		h.BadRequest(c, "Could not read photo")
		return
	}

	// sniff rather than trust the client's declared type
	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	resp, err := h.articles.UploadPhoto(c.Request.Context(), id, contentType, data)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
