package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"not found", shared.NewNotFoundError("Assignment"), http.StatusNotFound, "NOT_FOUND", "Assignment not found"},
		{"insufficient stock", shared.NewInsufficientStockError(8, 6), http.StatusUnprocessableEntity, "INSUFFICIENT_STOCK", "Insufficient stock: requested 8, available 6"},
		{"validation", shared.NewValidationError("Quantity must be positive"), http.StatusBadRequest, "VALIDATION_ERROR", "Quantity must be positive"},
		{"invalid state", shared.NewDomainError(shared.CodeInvalidState, "Article has active assignments"), http.StatusUnprocessableEntity, "INVALID_STATE", "Article has active assignments"},
		{"conflict", shared.ErrConcurrencyConflict, http.StatusConflict, "CONCURRENCY_CONFLICT", shared.ErrConcurrencyConflict.Message},
		{"wrapped domain error", fmt.Errorf("commit: %w", shared.NewNotFoundError("Article")), http.StatusNotFound, "NOT_FOUND", "Article not found"},
		{"storage error names the operation", shared.NewStorageError("insert assignment", errors.New("pq: connection reset")), http.StatusInternalServerError, "STORAGE_ERROR", "storage failure during insert assignment"},
		{"wrapped storage error", fmt.Errorf("commit: %w", shared.NewStorageError("decrement stock", errors.New("pq: connection reset"))), http.StatusInternalServerError, "STORAGE_ERROR", "storage failure during decrement stock"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "STORAGE_ERROR", "An unexpected storage error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			r := newTestRouter()
			r.GET("/", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := doJSON(r, http.MethodGet, "/", "")

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode(t, w, nil)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
			assert.Equal(t, w.Header().Get("X-Request-ID"), resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleErrorNil(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter()
	r.GET("/", func(c *gin.Context) {
		h.HandleError(c, nil)
		c.Status(http.StatusTeapot)
	})
	assert.Equal(t, http.StatusTeapot, doJSON(r, http.MethodGet, "/", "").Code)
}

func TestBaseHandler_PathID(t *testing.T) {
	h := &BaseHandler{}
	r := newTestRouter()
	r.GET("/items/:id", func(c *gin.Context) {
		if id, ok := h.pathID(c); ok {
			h.Success(c, id)
		}
	})

	w := doJSON(r, http.MethodGet, "/items/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", decode(t, w, nil).Error.Code)

	w = doJSON(r, http.MethodGet, "/items/8a4c3f1e-7d2b-4e59-9c61-0f3b2a1d5e77", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
