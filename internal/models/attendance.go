package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one stored entry. (StudentID, Course, Date) is unique.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"studentId"`
	Course    string           `db:"course" json:"course"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Remarks   *string          `db:"remarks" json:"remarks,omitempty"`
	MarkedBy  string           `db:"marked_by" json:"markedBy"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}

// AttendanceRecordRow extends the record with the joined identity columns.
type AttendanceRecordRow struct {
	AttendanceRecord
	StudentName       *string `db:"student_name"`
	StudentEmail      *string `db:"student_email"`
	StudentCode       *string `db:"student_code"`
	StudentDepartment *string `db:"student_department"`
	MarkedByName      *string `db:"marked_by_name"`
}

// AttendanceFilter defines query filters. All set fields are AND-ed and the
// date range is inclusive on both ends.
type AttendanceFilter struct {
	StudentID string
	Course    string
	StartDate *time.Time
	EndDate   *time.Time
}

// StudentRef is the expanded student reference of a record.
type StudentRef struct {
	ID         string  `json:"id"`
	Name       string  `json:"name,omitempty"`
	Email      string  `json:"email,omitempty"`
	StudentID  string  `json:"studentId,omitempty"`
	Department *string `json:"department,omitempty"`
}

// MarkerRef is the expanded teacher reference of a record.
type MarkerRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// AttendanceView is the JSON representation of a record returned to clients.
type AttendanceView struct {
	ID        string           `json:"id"`
	Student   StudentRef       `json:"student"`
	Course    string           `json:"course"`
	Date      string           `json:"date"`
	Status    AttendanceStatus `json:"status"`
	MarkedBy  MarkerRef        `json:"markedBy"`
	Remarks   *string          `json:"remarks,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NewAttendanceView converts a stored record into its client view.
func NewAttendanceView(rec AttendanceRecord) AttendanceView {
	return AttendanceView{
		ID:        rec.ID,
		Student:   StudentRef{ID: rec.StudentID},
		Course:    rec.Course,
		Date:      rec.Date.Format(DateLayout),
		Status:    rec.Status,
		MarkedBy:  MarkerRef{ID: rec.MarkedBy},
		Remarks:   rec.Remarks,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// NormalizeDate discards the time of day, keeping the calendar date as seen
// in the value's own location, and returns midnight UTC of that date.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD or RFC3339 input and normalizes it.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return NormalizeDate(t), nil
}

// Percentage is a ratio in [0,100] rounded to two decimals. It is encoded as
// a fixed two-decimal JSON string, e.g. "66.67".
type Percentage float64

// NewPercentage returns part/total*100 rounded to two decimals, or 0 when
// total is zero.
func NewPercentage(part, total int) Percentage {
	if total <= 0 || part <= 0 {
		return 0
	}
	if part >= total {
		return 100
	}
	return Percentage(math.Round(float64(part)/float64(total)*10000) / 100)
}

// MarshalJSON implements json.Marshaler.
func (p Percentage) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(p), 'f', 2, 64))
}

// UnmarshalJSON accepts both the string and the numeric form.
func (p *Percentage) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		*p = Percentage(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid percentage %q: %w", v, err)
		}
		*p = Percentage(f)
	default:
		return fmt.Errorf("invalid percentage %s", string(data))
	}
	return nil
}

// StatusTally is one (course, status) count produced by the store.
type StatusTally struct {
	Course string           `db:"course"`
	Status AttendanceStatus `db:"status"`
	Count  int              `db:"cnt"`
}

// AttendanceSummary counts records per status.
type AttendanceSummary struct {
	Total             int        `json:"total"`
	Present           int        `json:"present"`
	Absent            int        `json:"absent"`
	Late              int        `json:"late"`
	PresentPercentage Percentage `json:"presentPercentage"`
}

// Add folds count records of the given status into the summary.
func (s *AttendanceSummary) Add(status AttendanceStatus, count int) {
	switch status {
	case AttendanceStatusPresent:
		s.Present += count
	case AttendanceStatusAbsent:
		s.Absent += count
	case AttendanceStatusLate:
		s.Late += count
	default:
		return
	}
	s.Total += count
	s.PresentPercentage = NewPercentage(s.Present, s.Total)
}

// MarshalJSON encodes presentPercentage as the number 0 for an empty summary.
func (s AttendanceSummary) MarshalJSON() ([]byte, error) {
	type summary AttendanceSummary
	if s.Total > 0 {
		return json.Marshal(summary(s))
	}
	return json.Marshal(struct {
		summary
		PresentPercentage int `json:"presentPercentage"`
	}{summary: summary(s)})
}

// AttendanceStatistics is the overall summary plus one summary per course.
type AttendanceStatistics struct {
	Overall  AttendanceSummary            `json:"overall"`
	ByCourse map[string]AttendanceSummary `json:"byCourse"`
}
