package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/redis"
	redismocks "github.com/honeynil/prop-token-ledger/internal/infrastructure/redis/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestValidateJWT(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		token, err := GenerateJWT(secret, "alice", RoleAdmin, "jti-1", time.Hour)
		require.NoError(t, err)

		claims, err := ValidateJWT(secret, token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
		assert.Equal(t, RoleAdmin, claims.Role)
		assert.Equal(t, "jti-1", claims.ID)
	})

	t.Run("role defaults to investor", func(t *testing.T) {
		token, err := GenerateJWT(secret, "alice", "", "", time.Hour)
		require.NoError(t, err)

		claims, err := ValidateJWT(secret, token)
		require.NoError(t, err)
		assert.Equal(t, RoleInvestor, claims.Role)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := GenerateJWT(secret, "alice", RoleInvestor, "", -time.Minute)
		require.NoError(t, err)

		_, err = ValidateJWT(secret, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateJWT([]byte("other"), "alice", RoleInvestor, "", time.Hour)
		require.NoError(t, err)

		_, err = ValidateJWT(secret, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		}).SignedString(secret)
		require.NoError(t, err)

		_, err = ValidateJWT(secret, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no secret", func(t *testing.T) {
		_, err := GenerateJWT(nil, "alice", RoleInvestor, "", time.Hour)
		assert.Error(t, err)
	})
}

func TestAuthMiddleware(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	redisClient := redismocks.NewMockRedisClient(ctrl)

	var seen Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := AuthMiddleware(redisClient, string(secret))(next)

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/balance", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid token", func(t *testing.T) {
		token, _ := GenerateJWT(secret, "alice", RoleInvestor, "jti-1", time.Hour)
		redisClient.EXPECT().Get(gomock.Any(), redis.RevokedTokenKey("jti-1")).Return("", redis.ErrKeyNotFound)

		rec := serve("Bearer " + token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, Identity{UserID: "alice", Role: RoleInvestor}, seen)
	})

	t.Run("revoked token", func(t *testing.T) {
		token, _ := GenerateJWT(secret, "alice", RoleInvestor, "jti-2", time.Hour)
		redisClient.EXPECT().Get(gomock.Any(), redis.RevokedTokenKey("jti-2")).Return("1", nil)

		rec := serve("Bearer " + token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "token revoked")
	})

	t.Run("revocation list unavailable", func(t *testing.T) {
		token, _ := GenerateJWT(secret, "alice", RoleInvestor, "jti-3", time.Hour)
		redisClient.EXPECT().Get(gomock.Any(), redis.RevokedTokenKey("jti-3")).Return("", errors.New("i/o timeout"))

		rec := serve("Bearer " + token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing or malformed header", func(t *testing.T) {
		for _, header := range []string{"", "Token abc", "Bearer", "Bearer not-a-jwt"} {
			rec := serve(header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
			assert.Contains(t, rec.Body.String(), `"error_code":"UNAUTHORIZED"`)
		}
	})
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := RequireRole(RoleAdmin)(next)

	tests := []struct {
		name string
		id   *Identity
		want int
	}{
		{"admin", &Identity{UserID: "ops", Role: RoleAdmin}, http.StatusOK},
		{"investor", &Identity{UserID: "alice", Role: RoleInvestor}, http.StatusForbidden},
		{"anonymous", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/reconcile", nil)
			if tt.id != nil {
				req = req.WithContext(WithIdentity(req.Context(), *tt.id))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
