package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/honeynil/prop-token-ledger/internal/infrastructure/redis"
)

type Identity struct {
	UserID string
	Role   string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// AuthMiddleware verifies the bearer token and rejects tokens whose id is on the
// revocation list kept in Redis by the identity service.
func AuthMiddleware(redisClient redis.RedisClient, jwtSecret string) func(http.Handler) http.Handler {
	secret := []byte(jwtSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "authorization header missing")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeAuthError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := ValidateJWT(secret, parts[1])
			if err != nil {
				slog.Warn("invalid token", "error", err)
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			if claims.ID != "" && redisClient != nil {
				_, err := redisClient.Get(r.Context(), redis.RevokedTokenKey(claims.ID))
				switch {
				case err == nil:
					slog.Warn("revoked token used", "user_id", claims.Subject, "token_id", claims.ID)
					writeAuthError(w, http.StatusUnauthorized, "token revoked")
					return
				case err != redis.ErrKeyNotFound:
					// Revocation list unavailable; the signature and expiry already passed.
					slog.Error("failed to check token revocation", "user_id", claims.Subject, "error", err)
				}
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: claims.Subject, Role: claims.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must be mounted after AuthMiddleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok || id.Role != role {
				writeAuthError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	code := "UNAUTHORIZED"
	if status == http.StatusForbidden {
		code = "FORBIDDEN"
	}
	_, _ = w.Write([]byte(`{"success":false,"error_code":"` + code + `","error":"` + msg + `"}`))
}
