package models

import (
	"errors"
	"strings"
	"time"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleTeacher UserRole = "teacher"
	RoleStudent UserRole = "student"
)

// Valid returns true when the role is supported.
func (r UserRole) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

var (
	ErrStudentProfileRequired = errors.New("student profile is required for students")
	ErrUnexpectedProfile      = errors.New("student profile is only allowed for students")
	ErrInvalidRole            = errors.New("invalid role")
)

// StudentProfile holds the fields that only exist for students.
type StudentProfile struct {
	StudentID  string  `json:"studentId"`
	Department *string `json:"department,omitempty"`
}

// User is a registered identity. Role tags the variant: students carry a
// non-nil Student payload, teachers never do.
type User struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Role         UserRole        `json:"role"`
	Student      *StudentProfile `json:"-"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// NewTeacher builds a teacher identity.
func NewTeacher(name, email, passwordHash string) *User {
	return &User{Name: name, Email: NormalizeEmail(email), PasswordHash: passwordHash, Role: RoleTeacher}
}

// NewStudent builds a student identity with its role specific payload.
func NewStudent(name, email, passwordHash string, profile StudentProfile) *User {
	profile.StudentID = strings.TrimSpace(profile.StudentID)
	return &User{Name: name, Email: NormalizeEmail(email), PasswordHash: passwordHash, Role: RoleStudent, Student: &profile}
}

// Validate checks that the role and the role specific payload agree.
func (u *User) Validate() error {
	switch u.Role {
	case RoleStudent:
		if u.Student == nil || strings.TrimSpace(u.Student.StudentID) == "" {
			return ErrStudentProfileRequired
		}
	case RoleTeacher:
		if u.Student != nil {
			return ErrUnexpectedProfile
		}
	default:
		return ErrInvalidRole
	}
	return nil
}

// IsStudent reports whether the identity is a student.
func (u *User) IsStudent() bool { return u != nil && u.Role == RoleStudent }

// IsTeacher reports whether the identity is a teacher.
func (u *User) IsTeacher() bool { return u != nil && u.Role == RoleTeacher }

// Profile returns the public view of the user.
func (u *User) Profile() UserProfile {
	p := UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	if u.Student != nil {
		p.StudentID = u.Student.StudentID
		p.Department = u.Student.Department
	}
	return p
}

// UserProfile is the password-free representation returned to clients.
type UserProfile struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       UserRole  `json:"role"`
	StudentID  string    `json:"studentId,omitempty"`
	Department *string   `json:"department,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
