package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type attendanceRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, bool, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordRow, error)
	Tally(ctx context.Context, studentID, course string) ([]models.StatusTally, error)
}

type studentLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

var (
	errTeachersOnly = appErrors.Clone(appErrors.ErrForbidden, "Access denied. Teachers only.")
	errStudentsOnly = appErrors.Clone(appErrors.ErrForbidden, "Access denied. Students only.")
)

// AttendanceService coordinates attendance workflows.
type AttendanceService struct {
	records   attendanceRepository
	users     studentLookup
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(records attendanceRepository, users studentLookup, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{records: records, users: users, validator: validate, logger: logger, metrics: metrics}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(fl.Field().String()).Valid()
	})
	return svc
}

// Mark creates or overwrites the record for (student, course, date). The
// boolean result is true when a new record was created.
func (s *AttendanceService) Mark(ctx context.Context, caller *models.User, req dto.MarkAttendanceRequest) (*models.AttendanceView, bool, error) {
	if !caller.IsTeacher() {
		return nil, false, errTeachersOnly
	}

	req.StudentID = strings.TrimSpace(req.StudentID)
	req.Course = strings.TrimSpace(req.Course)
	req.Date = strings.TrimSpace(req.Date)
	req.Status = strings.TrimSpace(req.Status)
	if err := s.validator.Struct(req); err != nil {
		return nil, false, markValidationError(err)
	}

	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid date format, expected YYYY-MM-DD")
	}

	student, err := s.findStudent(ctx, req.StudentID)
	if err != nil {
		return nil, false, err
	}

	stored, created, err := s.records.Upsert(ctx, &models.AttendanceRecord{
		StudentID: student.ID,
		Course:    req.Course,
		Date:      date,
		Status:    models.AttendanceStatus(req.Status),
		Remarks:   trimOptional(req.Remarks),
		MarkedBy:  caller.ID,
	})
	if err != nil {
		return nil, false, appErrors.Internal(err, "")
	}

	view := models.NewAttendanceView(*stored)
	view.Student = studentRef(student)
	view.MarkedBy.Name = caller.Name

	s.metrics.RecordAttendanceMark(created, req.Status)
	s.logger.Info("attendance marked",
		zap.String("record_id", stored.ID),
		zap.String("student_id", student.ID),
		zap.String("course", stored.Course),
		zap.String("date", view.Date),
		zap.String("status", req.Status),
		zap.Bool("created", created),
	)
	return &view, created, nil
}

// ListRecords returns records across all students for teachers.
func (s *AttendanceService) ListRecords(ctx context.Context, caller *models.User, query dto.AttendanceQuery) ([]models.AttendanceView, error) {
	if !caller.IsTeacher() {
		return nil, errTeachersOnly
	}
	filter, err := buildFilter(query)
	if err != nil {
		return nil, err
	}
	rows, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "")
	}
	views := make([]models.AttendanceView, 0, len(rows))
	for _, row := range rows {
		views = append(views, fullView(row))
	}
	return views, nil
}

// MyAttendance returns the calling student's own records. Any student filter
// in the query is ignored.
func (s *AttendanceService) MyAttendance(ctx context.Context, caller *models.User, query dto.AttendanceQuery) ([]models.AttendanceView, error) {
	if !caller.IsStudent() {
		return nil, errStudentsOnly
	}
	query.StudentID = ""
	filter, err := buildFilter(query)
	if err != nil {
		return nil, err
	}
	filter.StudentID = caller.ID

	rows, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "")
	}
	views := make([]models.AttendanceView, 0, len(rows))
	for _, row := range rows {
		view := models.NewAttendanceView(row.AttendanceRecord)
		view.MarkedBy.Name = deref(row.MarkedByName)
		views = append(views, view)
	}
	return views, nil
}

// Statistics summarises one student's records. Teachers may target any
// student; everyone else, and teachers without a target, get their own.
func (s *AttendanceService) Statistics(ctx context.Context, caller *models.User, query dto.StatisticsQuery) (*models.AttendanceStatistics, error) {
	if caller == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	target := caller.ID
	requested := strings.TrimSpace(query.StudentID)
	if caller.IsTeacher() && requested != "" {
		if _, err := uuid.Parse(requested); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid student id")
		}
		target = requested
	}

	tallies, err := s.records.Tally(ctx, target, strings.TrimSpace(query.Course))
	if err != nil {
		return nil, appErrors.Internal(err, "")
	}
	stats := BuildStatistics(tallies)
	return &stats, nil
}

// BuildStatistics folds per course and status counts into the overall and
// per course summaries.
func BuildStatistics(tallies []models.StatusTally) models.AttendanceStatistics {
	stats := models.AttendanceStatistics{ByCourse: make(map[string]models.AttendanceSummary)}
	for _, t := range tallies {
		stats.Overall.Add(t.Status, t.Count)
		summary := stats.ByCourse[t.Course]
		summary.Add(t.Status, t.Count)
		stats.ByCourse[t.Course] = summary
	}
	return stats
}

func (s *AttendanceService) findStudent(ctx context.Context, id string) (*models.User, error) {
	notFound := appErrors.Clone(appErrors.ErrNotFound, "Student not found")
	if _, err := uuid.Parse(id); err != nil {
		return nil, notFound
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound
		}
		return nil, appErrors.Internal(err, "")
	}
	if !user.IsStudent() {
		return nil, notFound
	}
	return user, nil
}

func buildFilter(query dto.AttendanceQuery) (models.AttendanceFilter, error) {
	filter := models.AttendanceFilter{
		StudentID: strings.TrimSpace(query.StudentID),
		Course:    strings.TrimSpace(query.Course),
	}
	if filter.StudentID != "" {
		if _, err := uuid.Parse(filter.StudentID); err != nil {
			return filter, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid student id")
		}
	}
	var err error
	if filter.StartDate, err = parseOptionalDate(query.StartDate); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseOptionalDate(query.EndDate); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseOptionalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := models.ParseDate(raw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid date format, expected YYYY-MM-DD")
	}
	return &t, nil
}

func fullView(row models.AttendanceRecordRow) models.AttendanceView {
	view := models.NewAttendanceView(row.AttendanceRecord)
	view.Student.Name = deref(row.StudentName)
	view.Student.Email = deref(row.StudentEmail)
	view.Student.StudentID = deref(row.StudentCode)
	view.Student.Department = row.StudentDepartment
	view.MarkedBy.Name = deref(row.MarkedByName)
	return view
}

func studentRef(u *models.User) models.StudentRef {
	ref := models.StudentRef{ID: u.ID, Name: u.Name, Email: u.Email}
	if u.Student != nil {
		ref.StudentID = u.Student.StudentID
		ref.Department = u.Student.Department
	}
	return ref
}

func markValidationError(err error) *appErrors.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "attendance_status" {
				return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Status must be one of present, absent, late")
			}
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Please provide studentId, course, date and status")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
