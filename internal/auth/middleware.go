package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/virgil-assistant/virgil/internal/api"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the resolved caller of a request.
type Identity struct {
	Subject string
	// Legacy reports that the identity came from the unverified X-User-Id
	// header rather than a validated token. Only possible when the
	// legacy-identity mode is switched on.
	Legacy bool
}

// BearerToken extracts the token from an Authorization header, or "".
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// IdentityMiddleware resolves the caller's identity and stores it in the
// request context. A valid bearer token wins; with allowLegacy set, a bare
// X-User-Id header is accepted as an unverified fallback. Anonymous
// requests pass through with no identity — handlers that need one use
// RequireAuth. A token that is present but invalid is rejected outright.
func IdentityMiddleware(issuer *TokenIssuer, allowLegacy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := BearerToken(r); token != "" {
				subject, err := issuer.Validate(token)
				if err != nil {
					api.HandleError(w, api.ErrInvalidToken)
					return
				}
				ctx := context.WithValue(r.Context(), identityKey, &Identity{Subject: subject})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			if allowLegacy {
				if uid := r.Header.Get("X-User-Id"); uid != "" {
					ctx := context.WithValue(r.Context(), identityKey, &Identity{Subject: uid, Legacy: true})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth rejects requests whose context carries no identity.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r.Context()) == nil {
			api.HandleError(w, api.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity stores an identity in the context the way
// IdentityMiddleware does.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the identity stored by IdentityMiddleware, or nil.
func GetIdentity(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}
