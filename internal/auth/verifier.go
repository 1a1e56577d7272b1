package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails verification:
// malformed, bad signature, expired, or wrong issuer/audience.
var ErrInvalidToken = errors.New("invalid token")

// Verifier gates webhook admission. The queue core consumes this
// capability; it never inspects tokens itself.
type Verifier interface {
	Verify(token string) error
}

// TokenVerifier validates HS256-signed JWTs carrying issuer and audience
// claims, and can mint short-lived test tokens for the same key.
type TokenVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenVerifier creates a verifier for the given shared secret.
func NewTokenVerifier(secret, issuer, audience string) *TokenVerifier {
	return &TokenVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

// Verify checks the token signature, expiry, issuer, and audience.
func (v *TokenVerifier) Verify(tokenString string) error {
	if tokenString == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("%w: invalid claims", ErrInvalidToken)
	}

	// Validate issuer
	if iss, ok := claims["iss"].(string); !ok || iss != v.issuer {
		return fmt.Errorf("%w: invalid issuer", ErrInvalidToken)
	}

	// Validate audience
	if aud, ok := claims["aud"].(string); !ok || aud != v.audience {
		return fmt.Errorf("%w: invalid audience", ErrInvalidToken)
	}

	return nil
}

// IssueTestToken mints a token the verifier itself accepts, used by the
// test-token endpoint and the CLI.
func (v *TokenVerifier) IssueTestToken(ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": v.issuer,
		"aud": v.audience,
		"sub": "test-sender",
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign test token: %w", err)
	}
	return signed, nil
}
