package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/service"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

type attendanceService interface {
	Mark(ctx context.Context, caller *models.User, req dto.MarkAttendanceRequest) (*models.AttendanceView, bool, error)
	ListRecords(ctx context.Context, caller *models.User, query dto.AttendanceQuery) ([]models.AttendanceView, error)
	MyAttendance(ctx context.Context, caller *models.User, query dto.AttendanceQuery) ([]models.AttendanceView, error)
	Statistics(ctx context.Context, caller *models.User, query dto.StatisticsQuery) (*models.AttendanceStatistics, error)
}

type exportService interface {
	Export(ctx context.Context, caller *models.User, query dto.ExportQuery) (*service.ExportFile, error)
}

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	service attendanceService
	export  exportService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(svc attendanceService, export exportService) *AttendanceHandler {
	return &AttendanceHandler{service: svc, export: export}
}

// Mark godoc
// @Summary Mark attendance
// @Description Create or overwrite the record for a student, course and date
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} dto.MarkAttendanceResponse
// @Success 201 {object} dto.MarkAttendanceResponse
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/mark [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		return
	}
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Please provide studentId, course, date and status"))
		return
	}

	record, created, err := h.service.Mark(c.Request.Context(), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, dto.MarkAttendanceResponse{Message: "Attendance marked successfully", Attendance: record})
		return
	}
	response.OK(c, dto.MarkAttendanceResponse{Message: "Attendance updated successfully", Attendance: record})
}

// Records godoc
// @Summary List attendance records
// @Description Teacher view over all records, newest date first
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param course query string false "Course"
// @Param studentId query string false "Student user id"
// @Param startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {array} models.AttendanceView
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/records [get]
func (h *AttendanceHandler) Records(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		return
	}
	var query dto.AttendanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid query parameters"))
		return
	}

	records, err := h.service.ListRecords(c.Request.Context(), user, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, records)
}

// MyAttendance godoc
// @Summary List own attendance
// @Description Student view over their own records, newest date first
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param course query string false "Course"
// @Param startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {array} models.AttendanceView
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/my-attendance [get]
func (h *AttendanceHandler) MyAttendance(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		return
	}
	var query dto.AttendanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid query parameters"))
		return
	}

	records, err := h.service.MyAttendance(c.Request.Context(), user, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, records)
}

// Statistics godoc
// @Summary Attendance statistics
// @Description Overall and per course totals for one student
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Student user id (teachers only)"
// @Param course query string false "Course"
// @Success 200 {object} models.AttendanceStatistics
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /attendance/statistics [get]
func (h *AttendanceHandler) Statistics(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		return
	}
	var query dto.StatisticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid query parameters"))
		return
	}

	stats, err := h.service.Statistics(c.Request.Context(), user, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats)
}

// Export godoc
// @Summary Export attendance records
// @Description Download filtered records as CSV or PDF
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param course query string false "Course"
// @Param studentId query string false "Student user id"
// @Param startDate query string false "Inclusive start date (YYYY-MM-DD)"
// @Param endDate query string false "Inclusive end date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/records/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid query parameters"))
		return
	}

	file, err := h.export.Export(c.Request.Context(), user, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}
