package hash

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the cost the original credential records were written
// with, so existing hashes keep verifying.
const bcryptCost = 12

func HashPassword(password string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
