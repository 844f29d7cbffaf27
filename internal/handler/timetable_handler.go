package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/scts-api/internal/dto"
	"github.com/campuskit/scts-api/internal/models"
	"github.com/campuskit/scts-api/internal/service"
	"github.com/campuskit/scts-api/pkg/response"
)

// TimetableHandler exposes generation, listing and export of the committed
// schedule.
type TimetableHandler struct {
	timetable *service.TimetableService
	exporter  *service.ExportService
	dashboard *service.DashboardService
}

// NewTimetableHandler constructs a timetable handler. The dashboard service
// may be nil when the dashboard is disabled.
func NewTimetableHandler(timetable *service.TimetableService, exporter *service.ExportService, dashboard *service.DashboardService) *TimetableHandler {
	return &TimetableHandler{timetable: timetable, exporter: exporter, dashboard: dashboard}
}

// Generate godoc
// @Summary Run timetable generation
// @Description Replaces the committed schedule with a fresh allocation over the full catalog.
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	result, err := h.timetable.Generate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.InvalidateCache(c.Request.Context())
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// List godoc
// @Summary List committed schedule entries
// @Tags Timetable
// @Produce json
// @Param slotId query string false "Filter by slot"
// @Param batchId query string false "Filter by batch"
// @Param facultyId query string false "Filter by faculty"
// @Param roomId query string false "Filter by room"
// @Param subjectId query string false "Filter by subject"
// @Param day query string false "Filter by weekday (MON..FRI)"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	var query dto.TimetableQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	entries, err := h.timetable.List(c.Request.Context(), models.ScheduleEntryFilter{
		SlotID:    query.SlotID,
		BatchID:   query.BatchID,
		FacultyID: query.FacultyID,
		RoomID:    query.RoomID,
		SubjectID: query.SubjectID,
		Day:       query.Day,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Clear godoc
// @Summary Clear the committed schedule
// @Tags Timetable
// @Produce json
// @Success 204
// @Router /timetable [delete]
func (h *TimetableHandler) Clear(c *gin.Context) {
	if err := h.timetable.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	if h.dashboard != nil {
		h.dashboard.InvalidateCache(c.Request.Context())
	}
	response.NoContent(c)
}

// Slots godoc
// @Summary List the teaching period grid
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /slots [get]
func (h *TimetableHandler) Slots(c *gin.Context) {
	slots, err := h.timetable.ListSlots(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Export godoc
// @Summary Export the committed timetable
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /timetable/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))

	result, err := h.exporter.Generate(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
