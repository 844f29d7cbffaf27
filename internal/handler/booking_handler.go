package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/scts-api/internal/dto"
	"github.com/campuskit/scts-api/internal/service"
	appErrors "github.com/campuskit/scts-api/pkg/errors"
	"github.com/campuskit/scts-api/pkg/response"
)

type bookingObserver interface {
	ObserveBooking(outcome string)
}

// BookingHandler exposes manual schedule entry booking.
type BookingHandler struct {
	service   *service.BookingService
	metrics   bookingObserver
	dashboard *service.DashboardService
}

// NewBookingHandler constructs a booking handler. The dashboard service may
// be nil when the dashboard is disabled.
func NewBookingHandler(svc *service.BookingService, metrics bookingObserver, dashboard *service.DashboardService) *BookingHandler {
	return &BookingHandler{service: svc, metrics: metrics, dashboard: dashboard}
}

// Create godoc
// @Summary Book a manual schedule entry
// @Description Validates the proposed entry against the committed schedule and appends it when the slot is free for the batch, faculty and room.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.CreateEntryRequest true "Entry payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable/entries [post]
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	entry, err := h.service.Book(c.Request.Context(), req)
	if err != nil {
		if h.metrics != nil {
			h.metrics.ObserveBooking("rejected")
		}
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveBooking("committed")
	}
	if h.dashboard != nil {
		h.dashboard.InvalidateCache(c.Request.Context())
	}
	response.Created(c, entry)
}
