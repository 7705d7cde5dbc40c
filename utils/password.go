package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password length bounds. bcrypt rejects input longer than 72 bytes.
const (
	MinPasswordLength = 6
	MaxPasswordBytes  = 72
)

// PasswordAcceptable reports whether password fits the length policy.
func PasswordAcceptable(password string) bool {
	return len(password) >= MinPasswordLength && len(password) <= MaxPasswordBytes
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
