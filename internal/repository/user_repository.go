package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-api/internal/models"
)

const userColumns = `id, name, email, password_hash, role, student_id, department, created_at, updated_at`

// userRow is the flat storage shape of models.User.
type userRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	StudentID    *string   `db:"student_id"`
	Department   *string   `db:"department"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toModel() *models.User {
	user := &models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         models.UserRole(r.Role),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if user.Role == models.RoleStudent && r.StudentID != nil {
		user.Student = &models.StudentProfile{StudentID: *r.StudentID, Department: r.Department}
	}
	return user
}

func rowFromModel(u *models.User) userRow {
	row := userRow{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Student != nil {
		studentID := u.Student.StudentID
		row.StudentID = &studentID
		row.Department = u.Student.Department
	}
	return row
}

// UserRepository provides database access for identities.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by normalized email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	return r.getOne(ctx, "find user by email", query, models.NormalizeEmail(email))
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return r.getOne(ctx, "find user by id", query, id)
}

// FindByStudentID returns the student owning the given student number.
func (r *UserRepository) FindByStudentID(ctx context.Context, studentID string) (*models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE student_id = $1 LIMIT 1`
	return r.getOne(ctx, "find user by student id", query, studentID)
}

func (r *UserRepository) getOne(ctx context.Context, op, query string, arg interface{}) (*models.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return row.toModel(), nil
}

// ListStudents returns every student ordered by name.
func (r *UserRepository) ListStudents(ctx context.Context) ([]models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY name ASC, created_at ASC`
	var rows []userRow
	if err := r.db.SelectContext(ctx, &rows, query, string(models.RoleStudent)); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, *row.toModel())
	}
	return users, nil
}

// Create inserts a new user. Unique violations surface as *DuplicateError.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := user.Validate(); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (` + userColumns + `) VALUES (:id, :name, :email, :password_hash, :role, :student_id, :department, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rowFromModel(user)); err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}
