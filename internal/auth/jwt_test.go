package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	issuer := NewTokenIssuer("a-secret-that-is-at-least-32-chars!!", "virgil", time.Hour)

	t.Run("issue and validate", func(t *testing.T) {
		token, err := issuer.Issue("alice")
		require.NoError(t, err)
		assert.NotEmpty(t, token.AccessToken)
		assert.Equal(t, "bearer", token.TokenType)

		subject, err := issuer.Validate(token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
	})

	t.Run("empty token is missing", func(t *testing.T) {
		_, err := issuer.Validate("")
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, ErrMissing, authErr.Kind)
	})

	t.Run("garbage token is malformed", func(t *testing.T) {
		_, err := issuer.Validate("not-a-jwt")
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, ErrMalformed, authErr.Kind)
	})

	t.Run("wrong secret is invalid signature", func(t *testing.T) {
		other := NewTokenIssuer("another-secret-at-least-32-chars!!!!", "virgil", time.Hour)
		token, err := other.Issue("bob")
		require.NoError(t, err)

		_, err = issuer.Validate(token.AccessToken)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, ErrInvalidSignature, authErr.Kind)
	})

	t.Run("expired token", func(t *testing.T) {
		short := NewTokenIssuer("a-secret-that-is-at-least-32-chars!!", "virgil", -time.Second)
		token, err := short.Issue("carol")
		require.NoError(t, err)

		_, err = issuer.Validate(token.AccessToken)
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, ErrExpired, authErr.Kind)
	})
}

func TestAuthError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &AuthError{Kind: ErrMalformed, err: inner}
	assert.ErrorIs(t, err, inner)
}
