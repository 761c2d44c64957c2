package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/exobase-inc/exo-api/internal/api/response"
	"github.com/exobase-inc/exo-api/internal/domain"
	"github.com/exobase-inc/exo-api/internal/security"
)

type contextKey string

const (
	actorKey          contextKey = "actor"
	platformClaimsKey contextKey = "platformClaims"
)

// AuthMiddleware authenticates the two token kinds the API accepts.
type AuthMiddleware struct {
	tokens *security.TokenManager
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(tokens *security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// AuthenticateUser validates a user session token and puts the acting
// user on the request context.
func (m *AuthMiddleware) AuthenticateUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			response.Unauthorized(w, "missing or malformed authorization header")
			return
		}

		claims, err := m.tokens.VerifyUserToken(token)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		actor := domain.UserRef{
			ID:       claims.UserID,
			Username: claims.Username,
		}
		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthenticatePlatform validates a platform machine token carrying the
// given scope and puts its claims on the request context. The handler
// still has to check the claims against the platform in the URL.
func (m *AuthMiddleware) AuthenticatePlatform(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				response.Unauthorized(w, "missing or malformed authorization header")
				return
			}

			claims, err := m.tokens.VerifyPlatformToken(token)
			if err != nil {
				response.Unauthorized(w, "invalid or expired token")
				return
			}
			if !claims.HasScope(scope) {
				response.Forbidden(w, "token does not grant "+scope)
				return
			}

			ctx := context.WithValue(r.Context(), platformClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetActor returns the authenticated user from context.
func GetActor(ctx context.Context) (domain.UserRef, bool) {
	actor, ok := ctx.Value(actorKey).(domain.UserRef)
	return actor, ok
}

// GetPlatformClaims returns the authenticated platform token claims
// from context.
func GetPlatformClaims(ctx context.Context) (*security.PlatformClaims, bool) {
	claims, ok := ctx.Value(platformClaimsKey).(*security.PlatformClaims)
	return claims, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
