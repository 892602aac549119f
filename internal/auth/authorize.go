package auth

import "github.com/geocoder89/backoffice/internal/domain/user"

// HasPermission reports whether the resolved user's role grants the key.
// Flat set membership, no hierarchy between roles.
func HasPermission(u *user.CurrentUser, permissionKey string) bool {
	if u == nil {
		return false
	}

	for _, key := range u.Permissions {
		if key == permissionKey {
			return true
		}
	}

	return false
}
