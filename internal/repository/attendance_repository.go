package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-api/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

type upsertedRecord struct {
	models.AttendanceRecord
	Inserted bool `db:"inserted"`
}

// Upsert writes the record keyed by (student_id, course, date) in a single
// statement. An existing row keeps its id and created_at; status, remarks and
// marked_by are overwritten. The returned flag is true when a row was created.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, bool, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	record.Date = models.NormalizeDate(record.Date)

	query := `INSERT INTO attendance_records (id, student_id, course, date, status, remarks, marked_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (student_id, course, date)
DO UPDATE SET status = EXCLUDED.status, remarks = EXCLUDED.remarks, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at
RETURNING id, student_id, course, date, status, remarks, marked_by, created_at, updated_at, (xmax = 0) AS inserted`
	var stored upsertedRecord
	if err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.StudentID, record.Course, record.Date, record.Status,
		record.Remarks, record.MarkedBy, record.CreatedAt, record.UpdatedAt,
	); err != nil {
		return nil, false, fmt.Errorf("upsert attendance: %w", translate(err))
	}
	stored.Date = models.NormalizeDate(stored.Date)
	return &stored.AttendanceRecord, stored.Inserted, nil
}

// List returns records matching the filter, newest date first, joined with
// the student and marking teacher.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordRow, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("ar.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Course != "" {
		where = append(where, fmt.Sprintf("ar.course = $%d", len(args)+1))
		args = append(args, filter.Course)
	}
	if filter.StartDate != nil {
		where = append(where, fmt.Sprintf("ar.date >= $%d", len(args)+1))
		args = append(args, models.NormalizeDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where = append(where, fmt.Sprintf("ar.date <= $%d", len(args)+1))
		args = append(args, models.NormalizeDate(*filter.EndDate))
	}

	query := fmt.Sprintf(`SELECT ar.id, ar.student_id, ar.course, ar.date, ar.status, ar.remarks, ar.marked_by, ar.created_at, ar.updated_at,
s.name AS student_name, s.email AS student_email, s.student_id AS student_code, s.department AS student_department,
t.name AS marked_by_name
FROM attendance_records ar
JOIN users s ON s.id = ar.student_id
LEFT JOIN users t ON t.id = ar.marked_by
WHERE %s
ORDER BY ar.date DESC, ar.created_at DESC`, strings.Join(where, " AND "))

	var rows []models.AttendanceRecordRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	for i := range rows {
		rows[i].Date = models.NormalizeDate(rows[i].Date)
	}
	return rows, nil
}

// Tally counts a student's records grouped by course and status, optionally
// restricted to one course.
func (r *AttendanceRepository) Tally(ctx context.Context, studentID, course string) ([]models.StatusTally, error) {
	query := `SELECT course, status, COUNT(*) AS cnt
FROM attendance_records
WHERE student_id = $1 AND ($2 = '' OR course = $2)
GROUP BY course, status
ORDER BY course`
	var rows []models.StatusTally
	if err := r.db.SelectContext(ctx, &rows, query, studentID, course); err != nil {
		return nil, fmt.Errorf("attendance tally: %w", err)
	}
	return rows, nil
}
