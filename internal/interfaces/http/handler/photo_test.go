package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/mpvestiario/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoHandler_Get(t *testing.T) {
	photos := storage.NewMemoryPhotoStorage("http://localhost:8080/api/v1/photos")
	require.NoError(t, photos.Upload(context.Background(), "articles/a1/p1.png", []byte("\x89PNG"), "image/png"))

	h := NewPhotoHandler(photos)
	r := newTestRouter()
	r.GET("/photos/*key", h.Get)

	t.Run("stored photo", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/photos/articles/a1/p1.png", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, "\x89PNG", w.Body.String())
		assert.NotEmpty(t, w.Header().Get("Cache-Control"))
	})

	t.Run("unknown key", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/photos/articles/a1/missing.png", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", decode(t, w, nil).Error.Code)
	})
}
