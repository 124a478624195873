package utils

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/lithammer/shortuuid/v4"
)

const fileCodeBytes = 8

// NewFileCode creates a cryptographically secure share code. No uniqueness
// check is done here; the files table's primary key catches collisions.
func NewFileCode() (string, error) {
	b := make([]byte, fileCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewBatchID creates a random batch identifier.
func NewBatchID() string {
	return shortuuid.New()
}
