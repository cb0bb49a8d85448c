package auth

import (
	"fmt"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// ComparePassword reports whether password matches the bcrypt hash.
func ComparePassword(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

// HashAnswer hashes a security-question answer with argon2. Answers are
// compared exactly as given.
func HashAnswer(answer string) (string, error) {
	argon := argon2.DefaultConfig()
	encoded, err := argon.HashEncoded([]byte(answer))
	if err != nil {
		return "", fmt.Errorf("hash answer: %w", err)
	}
	return string(encoded), nil
}

// VerifyAnswer reports whether answer matches the encoded argon2 hash.
func VerifyAnswer(answer, encoded string) bool {
	ok, err := argon2.VerifyEncoded([]byte(answer), []byte(encoded))
	return err == nil && ok
}
