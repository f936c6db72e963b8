package httpapi

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oggyb/muzz-matching/internal/api"
	svcErr "github.com/oggyb/muzz-matching/internal/errors"
	"github.com/oggyb/muzz-matching/internal/logger"
)

// ViewerHeader carries the authenticated caller id, set by the gateway.
const ViewerHeader = "X-User-ID"

const viewerKey = "viewer_id"

// RequireViewer stores the X-User-ID header on the context and rejects
// requests without one.
func RequireViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(ViewerHeader))
		if id == "" {
			abortWith(c, svcErr.Validation(ViewerHeader+" header is required"))
			return
		}
		c.Set(viewerKey, id)
		c.Next()
	}
}

func viewerID(c *gin.Context) string {
	return c.GetString(viewerKey)
}

// RequestIDHeader is echoed back, or generated when the caller sent none.
const RequestIDHeader = "X-Request-ID"

// RequestLogger attaches a request-scoped logger to the request context and
// logs one line per request.
func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(RequestIDHeader, reqID)

		log := log.With("request_id", reqID)
		c.Request = c.Request.WithContext(logger.IntoContext(c.Request.Context(), log))

		c.Next()

		level := slog.LevelDebug
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		}
		log.Log(c.Request.Context(), level, "http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"viewer", viewerID(c),
			"duration", time.Since(start),
		)
	}
}

// abortWith writes the error body for err. Internal failures are logged and
// their cause is not exposed.
func abortWith(c *gin.Context, err error) {
	kind := svcErr.KindOf(err)
	msg := svcErr.MessageOf(err)
	if kind == svcErr.KindInternal {
		logger.FromContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "err", err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(svcErr.HTTPStatus(kind), api.ErrorResponse{
		Error: api.ErrorDetail{Kind: string(kind), Message: msg},
	})
}
