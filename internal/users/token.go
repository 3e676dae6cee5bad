package users

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Unsubscribe links are capability URLs: possession of the token is the
// credential, no login required. Tokens are HMAC-signed, single-purpose, and
// expire after 30 days, long enough to outlive any reminder email.
const unsubscribeTokenTTL = 30 * 24 * time.Hour

var errBadToken = errors.New("invalid unsubscribe token")

type unsubscribeClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// MintUnsubscribeToken signs an unsubscribe capability token for userID.
func MintUnsubscribeToken(secret string, userID uint) (string, error) {
	claims := unsubscribeClaims{
		Purpose: "unsubscribe",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(unsubscribeTokenTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign unsubscribe token: %w", err)
	}
	return signed, nil
}

// ParseUnsubscribeToken validates a capability token and returns the user id
// it grants unsubscribe rights for.
func ParseUnsubscribeToken(secret, token string) (uint, error) {
	var claims unsubscribeClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, errBadToken
	}
	if claims.Purpose != "unsubscribe" {
		return 0, errBadToken
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, errBadToken
	}
	return uint(id), nil
}
