package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 10

// dummyHash stands in for the stored hash when no account matches a login.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-account"), passwordCost)

// DummyHash returns a bcrypt hash at the login cost, compared when no account matches.
func DummyHash() string {
	return string(dummyHash)
}

func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares in constant time; a nil error means match.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
