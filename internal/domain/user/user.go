package user

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	RoleID       int64     `json:"-"`
	RoleKey      string    `json:"roleKey"`
	RoleName     string    `json:"roleName"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CurrentUser is the identity a session resolves to: the user plus the
// permission keys granted through its role.
type CurrentUser struct {
	ID          int64
	Email       string
	Name        string
	RoleKey     string
	RoleName    string
	Permissions []string
}
