package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures are collapsed into three cases.  Handlers treat all of
// them as 401, but the distinction is kept for logging and for tests.
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// TokenProfile describes one of the two token flavours the service issues.
// Access and refresh tokens use independent secrets and lifetimes, so a token
// signed for one profile never verifies under the other.  Profiles are built
// once from configuration and passed around as plain values.
type TokenProfile struct {
	Secret string        // HS256 signing secret
	TTL    time.Duration // lifetime from issuance
}

// Claims is the flat claim set carried by both token flavours.  The subject
// registered claim holds the user ID.  RefreshID is a per-issuance random
// nonce present only on refresh tokens; it guarantees that two refresh tokens
// for the same user never hash to the same stored value.
type Claims struct {
	Email     string `json:"email"`
	RefreshID string `json:"refreshId,omitempty"`
	jwt.RegisteredClaims
}

// SignToken builds and signs an HS256 JWT for the given profile.  refreshID
// should be empty for access tokens.  It returns the serialized token and its
// expiration time.
func SignToken(p TokenProfile, userID, email, refreshID string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(p.TTL)
	claims := Claims{
		Email:     email,
		RefreshID: refreshID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(p.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyToken parses and validates a token against the profile's secret.  Only
// HMAC-signed tokens are accepted; anything else fails verification.  The
// returned error is always one of ErrTokenMalformed, ErrTokenSignatureInvalid
// or ErrTokenExpired.
func VerifyToken(p TokenProfile, raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignatureInvalid
		}
		return []byte(p.Secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		default:
			return nil, ErrTokenMalformed
		}
	}
	if !tok.Valid {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}

// NewRefreshID returns the random per-issuance nonce embedded into refresh
// tokens: 16 bytes of secure randomness, hex encoded.
func NewRefreshID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
