package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type studentRepository interface {
	ListStudents(ctx context.Context) ([]models.User, error)
}

// StudentService exposes the student roster to teachers.
type StudentService struct {
	repo   studentRepository
	logger *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, logger: logger}
}

// List returns every student profile ordered by name.
func (s *StudentService) List(ctx context.Context, caller *models.User) ([]models.UserProfile, error) {
	if !caller.IsTeacher() {
		return nil, errTeachersOnly
	}
	students, err := s.repo.ListStudents(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "")
	}
	profiles := make([]models.UserProfile, 0, len(students))
	for i := range students {
		profiles = append(profiles, students[i].Profile())
	}
	return profiles, nil
}
