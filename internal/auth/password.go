package auth

import "golang.org/x/crypto/bcrypt"

// Cost 12 keeps verification under ~250ms on current hardware while
// staying above the bcrypt default.
const bcryptCost = 12

// HashPassword produces a bcrypt hash suitable for AUTH_USERS entries.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
