package auth

import (
	"github.com/google/uuid"

	"github.com/charlesng35/botspace/pkg/crypto"
)

// GenerateSessionToken returns a 64 character lower-case hex token: the SHA-256 digest of
// the canonical string form of a random UUID.
func GenerateSessionToken() string {
	return crypto.SHA256Hex(uuid.New().String())
}
