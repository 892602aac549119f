// Package rbac holds the role and permission model. A role bundles
// permission keys; each user carries exactly one role.
package rbac

type Role struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type Permission struct {
	ID   int64  `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// RoleWithPermissions is the shape the roles listing returns.
type RoleWithPermissions struct {
	Role
	Permissions []Permission `json:"permissions"`
}
