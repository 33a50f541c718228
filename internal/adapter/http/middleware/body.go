package middleware

import (
	"fmt"
	"net/http"

	"custodial-wallet/pkg/apperror"
	"custodial-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes bounds every JSON request body.
const DefaultMaxBodyBytes int64 = 1 << 20

// MaxBodySize rejects a declared Content-Length over maxBytes up front and
// caps the reader for chunked bodies, so binding fails once the limit is hit.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Abort(c, apperror.Validation(fmt.Sprintf("request body exceeds %d bytes", maxBytes)).
				WithDetail("limit_bytes", maxBytes))
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
