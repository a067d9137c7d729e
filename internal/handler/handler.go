package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "github.com/connectday/booking-api/pkg/errors"
)

// Handler serves the operational endpoints: liveness, readiness and metrics.
type Handler struct {
	db *sqlx.DB
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"status": "healthy"}))
}

func (h *Handler) ReadinessCheck(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, NewErrorResponse("database unreachable"))
		return
	}
	c.JSON(http.StatusOK, NewSuccessResponse(gin.H{"status": "ready"}))
}

func (h *Handler) MetricsHandler(c *gin.Context) {
	promhttp.Handler().ServeHTTP(c.Writer, c.Request)
}

// RespondWithError writes a service error using the shared envelope. AppErrors
// keep their status and message; anything else becomes a logged 500 with a
// generic message, handled by the error middleware. Either way the envelope
// carries the request ID the middleware stamped on the response.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.StatusCode(), errorResponse(c, appErr.Message))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorResponse(c, "internal server error"))
}

func errorResponse(c *gin.Context, message string) *Response {
	resp := NewErrorResponse(message)
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")
	return resp
}
