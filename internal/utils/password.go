package utils

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.  A
// malformed hash simply fails the comparison.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashRefreshSecret hashes a refresh token for storage.  bcrypt caps its input
// at 72 bytes and a signed refresh token is much longer, so the token is first
// reduced to a SHA-256 hex digest and the digest is what bcrypt sees.  The
// stored value is still a salted adaptive hash: a leaked database row cannot be
// replayed as a refresh token.
func HashRefreshSecret(raw string, cost int) (string, error) {
	return HashPassword(digestRefreshRaw(raw), cost)
}

// VerifyRefreshSecret reports whether raw is the refresh token whose hash was
// stored.  Mirrors VerifyPassword: any malformed stored value is a mismatch.
func VerifyRefreshSecret(hash, raw string) bool {
	return VerifyPassword(hash, digestRefreshRaw(raw))
}

func digestRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
