package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/mpvestiario/backend/internal/application/ledger"
)

// dateLayout is the format of date-only query parameters
const dateLayout = "2006-01-02"

// AssignmentService is the part of the stock ledger used by AssignmentHandler
type AssignmentService interface {
	CommitAssign(ctx context.Context, req ledgerapp.CommitAssignRequest) (*ledgerapp.CommitResponse, error)
	CommitEdit(ctx context.Context, id uuid.UUID, req ledgerapp.CommitEditRequest) (*ledgerapp.CommitResponse, error)
	CommitDelete(ctx context.Context, id uuid.UUID) (*ledgerapp.DeleteResponse, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (*ledgerapp.AssignmentResponse, error)
	ListHistory(ctx context.Context, query ledgerapp.HistoryQuery) ([]ledgerapp.HistoryEntryResponse, int64, error)
}

// AssignmentHandler handles delivery of articles to people
type AssignmentHandler struct {
	BaseHandler
	ledger AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler
func NewAssignmentHandler(ledger AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{ledger: ledger}
}

// Create issues stock to a person.
// POST /assignments
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req ledgerapp.CommitAssignRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.ledger.CommitAssign(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update changes the quantity of an assignment.
// PUT /assignments/:id
func (h *AssignmentHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req ledgerapp.CommitEditRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.ledger.CommitEdit(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an assignment and returns its units to stock.
// DELETE /assignments/:id
func (h *AssignmentHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	resp, err := h.ledger.CommitDelete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByID returns one assignment.
// GET /assignments/:id
func (h *AssignmentHandler) GetByID(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	resp, err := h.ledger.GetAssignment(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// historyParams are the raw query parameters of the history list
type historyParams struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	PersonID  string `form:"person_id" binding:"omitempty,uuid"`
	ArticleID string `form:"article_id" binding:"omitempty,uuid"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

func (p historyParams) query() ledgerapp.HistoryQuery {
	var q ledgerapp.HistoryQuery
	q.Page, q.PageSize = effectivePage(p.Page, p.PageSize)
	if p.PersonID != "" {
		id := uuid.MustParse(p.PersonID)
		q.PersonID = &id
	}
	if p.ArticleID != "" {
		id := uuid.MustParse(p.ArticleID)
		q.ArticleID = &id
	}
	if t, err := time.Parse(dateLayout, p.From); err == nil {
		q.From = &t
	}
	if t, err := time.Parse(dateLayout, p.To); err == nil {
		q.To = &t
	}
	return q
}

// List returns the delivery history, newest first. The to date is inclusive.
// GET /assignments?person_id=&article_id=&from=YYYY-MM-DD&to=YYYY-MM-DD&page=&page_size=
func (h *AssignmentHandler) List(c *gin.Context) {
	var params historyParams
	if !h.bindQuery(c, &params) {
		return
	}

	query := params.query()
	entries, total, err := h.ledger.ListHistory(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, query.Page, query.PageSize)
}
