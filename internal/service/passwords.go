package service

import "golang.org/x/crypto/bcrypt"

// Hash returns bcrypt hash of password. Passwords longer than 72 bytes are
// rejected by validation before reaching here.
func Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
