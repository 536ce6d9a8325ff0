// Package handler implements the REST endpoints of the stock ledger API.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mpvestiario/backend/internal/domain/shared"
	"github.com/mpvestiario/backend/internal/infrastructure/logger"
	"github.com/mpvestiario/backend/internal/interfaces/http/dto"
	"github.com/mpvestiario/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewPageResponse(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// ErrorWithCode sends an error response, deriving the status from the code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	middleware.SetErrorCode(c, code)
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 BAD_REQUEST response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeBadRequest, message)
}

// effectivePage fills omitted paging with the list defaults
func effectivePage(page, pageSize int) (int, int) {
	def := shared.DefaultFilter()
	if page <= 0 {
		page = def.Page
	}
	if pageSize <= 0 {
		pageSize = def.PageSize
	}
	return page, pageSize
}

// NotFound sends a 404 NOT_FOUND response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeNotFound, message)
}

// HandleError writes err as an error envelope. Domain errors keep their code
// and message. A storage failure reports the failed operation and logs the
// driver error. Anything else is logged and reported as STORAGE_ERROR
// without detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Code == shared.CodeStorage {
			logger.FromGin(c).Error("Storage failure", zap.Error(err))
			_ = c.Error(err)
		}
		h.ErrorWithCode(c, domainErr.Code, domainErr.Message)
		return
	}

	logger.FromGin(c).Error("Request failed", zap.Error(err))
	_ = c.Error(err)
	h.ErrorWithCode(c, dto.ErrCodeStorage, "An unexpected storage error occurred")
}

// bindJSON binds the request body, writing a 400 on failure.
// Field validation failures carry per-field details.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// bindQuery binds query parameters, writing a 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.BadRequest(c, "Malformed request: "+err.Error())
}

// pathID parses the :id path parameter, writing a 400 when it is not a UUID
func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid id: "+c.Param("id"))
		return uuid.Nil, false
	}
	return id, true
}
