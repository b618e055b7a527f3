package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token is the /auth/token response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Claims carries the authenticated subject.
type Claims struct {
	jwt.RegisteredClaims
}

// AuthError classifies why a token was rejected. Every kind is surfaced to
// HTTP callers as a plain 401; the kind is for logs and tests.
type AuthError struct {
	Kind ErrorKind
	err  error
}

type ErrorKind string

const (
	ErrMissing          ErrorKind = "missing"
	ErrMalformed        ErrorKind = "malformed"
	ErrInvalidSignature ErrorKind = "invalid_signature"
	ErrExpired          ErrorKind = "expired"
)

func (e *AuthError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Kind, e.err)
	}
	return fmt.Sprintf("auth: %s", e.Kind)
}

func (e *AuthError) Unwrap() error { return e.err }

// TokenIssuer issues and validates HS256 bearer tokens carrying a subject
// claim.
type TokenIssuer struct {
	secret []byte
	issuer string
	expiry time.Duration
}

func NewTokenIssuer(secret, issuer string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		issuer: issuer,
		expiry: expiry,
	}
}

// Issue returns a signed access token for the given subject.
func (i *TokenIssuer) Issue(subject string) (*Token, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	return &Token{AccessToken: signed, TokenType: "bearer"}, nil
}

// Validate parses the token and returns its subject, or an *AuthError
// classifying the failure.
func (i *TokenIssuer) Validate(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", &AuthError{Kind: ErrMissing}
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return "", &AuthError{Kind: classify(err), err: err}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", &AuthError{Kind: ErrMalformed, err: errors.New("invalid token claims")}
	}
	return claims.Subject, nil
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	default:
		return ErrMalformed
	}
}
