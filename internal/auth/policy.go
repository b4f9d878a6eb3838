// server/internal/auth/policy.go
package auth

import "fsic-records-api-server/internal/models"

// RoleForNewUser decides the role of an account about to be created, given
// how many accounts already exist. The very first account administers the
// system; everyone after that starts as staff.
func RoleForNewUser(existingUsers int64) string {
	if existingUsers == 0 {
		return models.RoleAdmin
	}
	return models.RoleStaff
}

// CanDelete reports whether u may be removed through the regular delete path.
func CanDelete(u models.User) bool {
	return u.Role != models.RoleAdmin
}
