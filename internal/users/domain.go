package users

import "time"

// User is an account that can be assigned a role. RoleID is empty when no
// role is assigned; such users resolve to zero permissions everywhere.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	RoleID       string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
