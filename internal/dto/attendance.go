package dto

import "github.com/noah-isme/attendance-api/internal/models"

// MarkAttendanceRequest is the payload of POST /attendance/mark.
type MarkAttendanceRequest struct {
	StudentID string  `json:"studentId" validate:"required"`
	Course    string  `json:"course" validate:"required"`
	Date      string  `json:"date" validate:"required"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Remarks   *string `json:"remarks"`
}

// MarkAttendanceResponse is the body returned by POST /attendance/mark.
type MarkAttendanceResponse struct {
	Message    string                 `json:"message"`
	Attendance *models.AttendanceView `json:"attendance"`
}

// AttendanceQuery captures the query string of the record listing
// endpoints. Dates are YYYY-MM-DD or RFC3339 and inclusive.
type AttendanceQuery struct {
	Course    string `form:"course"`
	StudentID string `form:"studentId"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// StatisticsQuery captures the query string of GET /attendance/statistics.
type StatisticsQuery struct {
	StudentID string `form:"studentId"`
	Course    string `form:"course"`
}

// ExportQuery adds the output format to the record filters.
type ExportQuery struct {
	AttendanceQuery
	Format string `form:"format"`
}

