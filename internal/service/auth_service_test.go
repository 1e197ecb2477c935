package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type mockUserRepo struct {
	users     []*models.User
	createErr error
	findErr   error
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.Email == models.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) FindByStudentID(ctx context.Context, studentID string) (*models.User, error) {
	for _, u := range m.users {
		if u.Student != nil && u.Student.StudentID == studentID {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) ListStudents(ctx context.Context) ([]models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []models.User
	for _, u := range m.users {
		if u.IsStudent() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if err := user.Validate(); err != nil {
		return err
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.users = append(m.users, user)
	return nil
}

func newTestAuthService(repo *mockUserRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), NewMetricsService(), AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
		Issuer:      "attendance-api",
		BcryptCost:  bcrypt.MinCost,
	})
}

func assertAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected *errors.Error, got %v", err)
	assert.Equal(t, status, appErr.Status)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func TestAuthServiceRegisterStudent(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newTestAuthService(repo)
	dept := " Physics "

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:       "Ana",
		Email:      "Ana@Example.com",
		Password:   "secret123",
		Role:       "student",
		StudentID:  "S-1",
		Department: &dept,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ana@example.com", res.Email)
	assert.Equal(t, models.RoleStudent, res.Role)
	assert.Equal(t, "S-1", res.StudentID)
	require.NotNil(t, res.Department)
	assert.Equal(t, "Physics", *res.Department)

	require.Len(t, repo.users, 1)
	assert.NotEqual(t, "secret123", repo.users[0].PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[0].PasswordHash), []byte("secret123")))

	claims, err := svc.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.ID, claims.UserID)
}

func TestAuthServiceRegisterTeacherIgnoresStudentFields(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newTestAuthService(repo)

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Name: "Tom", Email: "tom@example.com", Password: "pw", Role: "teacher", StudentID: "S-9",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, res.Role)
	assert.Empty(t, res.StudentID)
	assert.Nil(t, repo.users[0].Student)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{})

	cases := []struct {
		name    string
		req     models.RegisterRequest
		message string
	}{
		{"missing name", models.RegisterRequest{Email: "a@b.co", Password: "p", Role: "teacher"}, "Please provide all required fields"},
		{"blank name", models.RegisterRequest{Name: "   ", Email: "a@b.co", Password: "p", Role: "teacher"}, "Please provide all required fields"},
		{"bad email", models.RegisterRequest{Name: "A", Email: "nope", Password: "p", Role: "teacher"}, "Please provide a valid email address"},
		{"bad role", models.RegisterRequest{Name: "A", Email: "a@b.co", Password: "p", Role: "admin"}, "Role must be either teacher or student"},
		{"student without id", models.RegisterRequest{Name: "A", Email: "a@b.co", Password: "p", Role: "student"}, "Student ID is required for students"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			assertAppError(t, err, 400, tc.message)
		})
	}
}

func TestAuthServiceRegisterConflicts(t *testing.T) {
	repo := &mockUserRepo{users: []*models.User{
		{ID: "u1", Name: "Ana", Email: "ana@example.com", Role: models.RoleStudent, Student: &models.StudentProfile{StudentID: "S-1"}},
	}}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "B", Email: "ANA@example.com", Password: "p", Role: "teacher"})
	assertAppError(t, err, 409, "User already exists with this email")

	_, err = svc.Register(context.Background(), models.RegisterRequest{Name: "B", Email: "b@example.com", Password: "p", Role: "student", StudentID: "S-1"})
	assertAppError(t, err, 409, "Student ID already exists")
	assert.Len(t, repo.users, 1)
}

func TestAuthServiceRegisterStoreDuplicate(t *testing.T) {
	repo := &mockUserRepo{createErr: &repository.DuplicateError{Field: "email"}}
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "B", Email: "b@example.com", Password: "p", Role: "teacher"})
	assertAppError(t, err, 409, "Duplicate value for field: email")
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newTestAuthService(repo)
	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Tom", Email: "tom@example.com", Password: "pw", Role: "teacher"})
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: " TOM@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, repo.users[0].ID, res.ID)
}

func TestAuthServiceLoginFailuresAreIndistinguishable(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newTestAuthService(repo)
	_, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Tom", Email: "tom@example.com", Password: "pw", Role: "teacher"})
	require.NoError(t, err)

	_, errWrong := svc.Login(context.Background(), models.LoginRequest{Email: "tom@example.com", Password: "bad"})
	_, errMissing := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "pw"})
	assertAppError(t, errWrong, 401, "Invalid email or password")
	assertAppError(t, errMissing, 401, "Invalid email or password")
}

func TestAuthServiceLoginValidation(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{})
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "tom@example.com"})
	assertAppError(t, err, 400, "Please provide email and password")
}

func TestAuthServiceLoginStoreFailure(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{findErr: errors.New("db down")})
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "tom@example.com", Password: "pw"})
	assertAppError(t, err, 500, "")
}

func TestAuthServiceAuthenticate(t *testing.T) {
	repo := &mockUserRepo{}
	svc := newTestAuthService(repo)
	res, err := svc.Register(context.Background(), models.RegisterRequest{Name: "Tom", Email: "tom@example.com", Password: "pw", Role: "teacher"})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.ID, user.ID)

	repo.users = nil
	_, err = svc.Authenticate(context.Background(), res.Token)
	assertAppError(t, err, 401, "User not found")
}

func TestAuthServiceAuthenticateRejectsBadTokens(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{})

	_, err := svc.Authenticate(context.Background(), "garbage")
	assertAppError(t, err, 401, "Not authorized, token invalid or expired")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), signed)
	assertAppError(t, err, 401, "Not authorized, token invalid or expired")

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{UserID: "u1"})
	signed, err = foreign.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = svc.Authenticate(context.Background(), signed)
	assertAppError(t, err, 401, "Not authorized, token invalid or expired")
}

func TestAuthServiceCurrentUser(t *testing.T) {
	repo := &mockUserRepo{users: []*models.User{{ID: "u1", Name: "Tom", Email: "tom@example.com", Role: models.RoleTeacher}}}
	svc := newTestAuthService(repo)

	profile, err := svc.CurrentUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Tom", profile.Name)

	_, err = svc.CurrentUser(context.Background(), "missing")
	assertAppError(t, err, 404, "User not found")
}
