package models

import (
	"time"
)

const (
	RoleUnassigned  = "unassigned"
	RoleParticipant = "participant"
	RoleInstructure = "instructure"
	RoleAdmin       = "admin"
)

// DefaultRoles is the baseline role set ensured at process start.
var DefaultRoles = map[string]string{
	RoleUnassigned:  "User without an active profile",
	RoleParticipant: "Training participant",
	RoleInstructure: "Training instructor",
	RoleAdmin:       "Administrator",
}

type Role struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"uniqueIndex:uq_roles_name;not null;size:50"`
	Description *string `json:"description" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID           string `json:"id" gorm:"primaryKey;size:255"`
	Email        string `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Username     string `json:"username" gorm:"uniqueIndex;not null;size:100"`
	PasswordHash string `json:"-" gorm:"size:255"`
	FullName     string `json:"full_name" gorm:"size:100"`

	RoleID        uint  `json:"role_id" gorm:"not null;index"`
	// Back-reference to the instructor profile this user acts as, if any.
	InstructureID *uint `json:"instructure_id" gorm:"index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity is the verified caller as resolved by the authentication layer.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

func (Role) TableName() string {
	return "roles"
}

func (User) TableName() string {
	return "users"
}
