package domain

import "time"

// Role distinguishes citizens from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the domain model for accounts that submit or triage reports.
// PasswordHash is the only mutable field and never leaves the service layer.
type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	Phone        *string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}
