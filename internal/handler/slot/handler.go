package slot

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/connectday/booking-api/internal/handler"
	"github.com/connectday/booking-api/internal/model"
	"github.com/connectday/booking-api/internal/service/booking"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ListSlots(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("date parameter is required"))
		return
	}
	date, err := model.ParseDate(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date format"))
		return
	}

	slots, err := h.service.ListSlots(c.Request.Context(), date)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) ToggleSlot(c *gin.Context) {
	var req model.ToggleSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	slot, created, err := h.service.ToggleSlot(c.Request.Context(), &req)
	if err != nil {
		handler.RespondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"slot":    slot,
		"created": created,
	}))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	slots := r.Group("/slots")
	{
		slots.GET("", h.ListSlots)
		slots.POST("", h.ToggleSlot)
	}
}
