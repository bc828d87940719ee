package handler

import (
	"context"
	"net/http"
	"secure-banking-api/common"
	"secure-banking-api/logger"
	"secure-banking-api/model"
	"strings"
)

type contextKey string

const identityKey contextKey = "identity"

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok
}

// AuthMiddleware resolves a Bearer token into an identity on the request context.
// It never rejects a request: a missing or bad token leaves the request anonymous and
// each handler decides whether it needs an identity.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := IdentityFromContext(ctx); ok {
				// Identity only ever comes from the token on this request.
				ctx = context.WithValue(ctx, identityKey, nil)
			}

			if tokenString, ok := bearerToken(r); ok {
				identity, err := verifier.Verify(tokenString)
				if err != nil {
					logger.Log.WithError(err).WithField("path", r.URL.Path).Debug("Ignoring invalid bearer token")
				} else {
					ctx = WithIdentity(ctx, identity)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireRole rejects anonymous requests with 401 and callers lacking role with 403.
func RequireRole(role model.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			common.NewAppError(http.StatusUnauthorized, "Authentication required", nil).Send(w)
			return
		}
		if !identity.HasRole(role) {
			common.NewAppError(http.StatusForbidden, "Access denied. Admin privileges required.", nil).Send(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}
