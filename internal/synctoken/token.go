// Package synctoken hashes and checks the shared secret that peers present
// when pushing a collection to the sync endpoint.
package synctoken

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrTokenRequired = errors.New("sync token is required")
	ErrInvalidToken  = errors.New("invalid sync token")
)

// MinLength is the shortest token Hash accepts.
const MinLength = 16

// Hash returns the bcrypt hash to store in DQA_SYNC_TOKEN_HASH.
func Hash(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenRequired
	}
	if len(token) < MinLength {
		return "", fmt.Errorf("sync token must be at least %d characters", MinLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash sync token: %w", err)
	}
	return string(hash), nil
}

// Check compares a presented token with the stored hash. An empty hash
// leaves the endpoint open.
func Check(hash, token string) error {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return nil
	}
	if token == "" {
		return ErrTokenRequired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		return ErrInvalidToken
	}
	return nil
}

// Generate returns a random hex token of 32 bytes.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate sync token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
