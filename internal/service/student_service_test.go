package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/models"
)

func TestStudentServiceList(t *testing.T) {
	repo := &mockUserRepo{users: []*models.User{
		{ID: "t1", Name: "Tom", Email: "tom@example.com", Role: models.RoleTeacher},
		{ID: "s1", Name: "Ana", Email: "ana@example.com", Role: models.RoleStudent, Student: &models.StudentProfile{StudentID: "S-1"}},
	}}
	svc := NewStudentService(repo, zap.NewNop())

	profiles, err := svc.List(context.Background(), repo.users[0])
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "Ana", profiles[0].Name)
	assert.Equal(t, "S-1", profiles[0].StudentID)
}

func TestStudentServiceListEmpty(t *testing.T) {
	svc := NewStudentService(&mockUserRepo{}, nil)
	teacher := &models.User{ID: "t1", Role: models.RoleTeacher}

	profiles, err := svc.List(context.Background(), teacher)
	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
}

func TestStudentServiceListErrors(t *testing.T) {
	student := &models.User{ID: "s1", Role: models.RoleStudent, Student: &models.StudentProfile{StudentID: "S-1"}}
	_, err := NewStudentService(&mockUserRepo{}, nil).List(context.Background(), student)
	assertAppError(t, err, 403, "Access denied. Teachers only.")

	teacher := &models.User{ID: "t1", Role: models.RoleTeacher}
	_, err = NewStudentService(&mockUserRepo{findErr: errors.New("db down")}, nil).List(context.Background(), teacher)
	assertAppError(t, err, 500, "Server error")
}
