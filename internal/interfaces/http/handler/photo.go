package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mpvestiario/backend/internal/infrastructure/storage"
)

// PhotoSource returns stored photo bytes by key
type PhotoSource interface {
	Get(storageKey string) (storage.Photo, error)
}

// PhotoHandler serves photos kept by the in-memory photo store. It is only
// routed when no object storage bucket is configured.
type PhotoHandler struct {
	BaseHandler
	photos PhotoSource
}

// NewPhotoHandler creates a new PhotoHandler
func NewPhotoHandler(photos PhotoSource) *PhotoHandler {
	return &PhotoHandler{photos: photos}
}

// Get writes the photo stored under the wildcard key.
// GET /photos/*key
func (h *PhotoHandler) Get(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		h.NotFound(c, "photo not found")
		return
	}

	photo, err := h.photos.Get(key)
	if errors.Is(err, storage.ErrPhotoNotFound) {
		h.NotFound(c, "photo not found")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=86400")
	c.Data(http.StatusOK, photo.ContentType, photo.Data)
}
