// Package crypto implements server-side password hashing.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Params tunes the Argon2id cost. Zero-value fields fall back to the
// defaults below.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
}

// DefaultParams is sized for interactive logins on a shared server.
var DefaultParams = Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 1,
	KeyLen:  32,
}

// NewSalt returns a fresh 16-byte random salt.
func NewSalt() ([]byte, error) {
	b := make([]byte, 16)
	_, err := rand.Read(b)
	return b, err
}

// HashPassword derives an Argon2id hash of password under salt.
func HashPassword(password, salt []byte) []byte {
	p := DefaultParams
	return argon2.IDKey(password, salt, p.Time, p.Memory, p.Threads, p.KeyLen)
}

// VerifyPassword reports whether password matches the stored hash. The
// comparison is constant-time.
func VerifyPassword(password, salt, expected []byte) bool {
	got := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
