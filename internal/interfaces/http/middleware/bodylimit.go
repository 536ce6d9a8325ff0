package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mpvestiario/backend/internal/interfaces/http/dto"
)

// BodyLimit caps request bodies at maxBytes, or at uploadBytes for
// multipart/form-data. Declared lengths over the cap are rejected up front;
// chunked bodies fail on read once the cap is crossed.
func BodyLimit(maxBytes, uploadBytes int64) gin.HandlerFunc {
	if uploadBytes < maxBytes {
		uploadBytes = maxBytes
	}
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		limit := maxBytes
		if isMultipart(c.Request) {
			limit = uploadBytes
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponseWithRequestID(
				dto.ErrCodePayloadTooLarge,
				"Request body exceeds maximum allowed size",
				GetRequestID(c),
			))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}
