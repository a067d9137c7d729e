package partner

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connectday/booking-api/internal/handler"
	"github.com/connectday/booking-api/internal/service/booking"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListPartners(c *gin.Context) {
	partners, err := h.service.ListPartners(c.Request.Context())
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(partners))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/partners", h.ListPartners)
}
