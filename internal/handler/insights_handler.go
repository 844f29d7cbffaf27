package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/scts-api/internal/dto"
	"github.com/campuskit/scts-api/internal/service"
	appErrors "github.com/campuskit/scts-api/pkg/errors"
	"github.com/campuskit/scts-api/pkg/response"
)

// InsightsHandler exposes the timetable question endpoint.
type InsightsHandler struct {
	service *service.InsightsService
}

// NewInsightsHandler constructs an insights handler.
func NewInsightsHandler(svc *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{service: svc}
}

// Ask godoc
// @Summary Ask a question about the timetable
// @Tags Insights
// @Accept json
// @Produce json
// @Param payload body dto.InsightsRequest true "Question payload"
// @Success 200 {object} response.Envelope
// @Router /insights [post]
func (h *InsightsHandler) Ask(c *gin.Context) {
	var req dto.InsightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	answer, err := h.service.Ask(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, answer, nil)
}
