// server/internal/auth/password.go
package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashCost is lowered by tests; production keeps the default.
var HashCost = 12

// Hashing
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
