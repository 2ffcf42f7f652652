package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoExpiry = errors.New("token has no expiry")

// GenerateToken signs an HS256 access token for username, valid for ttl.
func GenerateToken(username string, secret []byte, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies tokenStr with secret and returns its subject.
func ParseToken(tokenStr string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	return token.Claims.GetSubject()
}

// Expiry reads the exp claim without verifying the signature.
// The dashboard cannot verify backend tokens; it only uses exp to drop credentials early.
func Expiry(tokenStr string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, err
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiry
	}
	return exp.Time, nil
}

// Expired reports whether tokenStr is a JWT whose exp is at or before now.
// Opaque (non-JWT) tokens never count as expired; the backend's 401 decides for them.
func Expired(tokenStr string, now time.Time) bool {
	exp, err := Expiry(tokenStr)
	if err != nil {
		return false
	}
	return !now.Before(exp)
}
