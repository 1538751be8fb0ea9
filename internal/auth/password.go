package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password verifies the admin password against a bcrypt hash.
type Password struct {
	hash []byte
}

// NewPassword accepts either a precomputed bcrypt hash or a plain password,
// which is hashed once at startup. The hash wins when both are set.
func NewPassword(plain, hash string) (*Password, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("invalid admin password hash: %w", err)
		}
		return &Password{hash: []byte(hash)}, nil
	}
	if plain == "" {
		return nil, errors.New("admin password is empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &Password{hash: h}, nil
}

// Verify reports whether candidate matches.
func (p *Password) Verify(candidate string) bool {
	return bcrypt.CompareHashAndPassword(p.hash, []byte(candidate)) == nil
}
