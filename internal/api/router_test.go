package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/honeynil/prop-token-ledger/internal/handler"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/auth"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/kafka"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/redis"
	"github.com/honeynil/prop-token-ledger/internal/repository/memory"
	service "github.com/honeynil/prop-token-ledger/internal/services"
	"github.com/honeynil/prop-token-ledger/internal/sweeper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "router-test-secret"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	properties := memory.NewPropertyRepository()
	_, err := properties.Create(context.Background(), "prop-1", 100)
	require.NoError(t, err)

	svc := service.NewLedgerService(memory.NewAccountRepository(), memory.NewTransactionRepository(), properties,
		memory.NewPaymentMethodRepository(memory.DefaultPaymentMethods()...),
		redis.NoopClient{}, kafka.NoopProducer{}, service.Options{})
	t.Cleanup(svc.Drain)

	h := handler.NewHandler(svc, sweeper.NewReconciler(sweeper.Config{}, svc))
	srv := httptest.NewServer(SetupRouter(h, redis.NoopClient{}, jwtSecret, nil))
	t.Cleanup(srv.Close)
	return srv
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := auth.GenerateJWT([]byte(jwtSecret), userID, role, "", time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func call(t *testing.T, srv *httptest.Server, method, path, token, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestRouter_PurchaseAndInvest(t *testing.T) {
	srv := newTestServer(t)
	alice := bearer(t, "alice", auth.RoleInvestor)

	resp, body := call(t, srv, http.MethodPost, "/purchase", alice,
		`{"token_amount":20,"payment_method":"bank_transfer","payment_reference":"wire-1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(20), body["new_balance"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = call(t, srv, http.MethodPost, "/invest", alice, `{"property_id":"prop-1","token_amount":5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(15), body["new_balance"])
	assert.NotZero(t, body["investment_id"])

	resp, body = call(t, srv, http.MethodPost, "/invest", alice, `{"property_id":"prop-1","token_amount":50}`)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_BALANCE", body["error_code"])
	assert.Equal(t, float64(15), body["balance"])

	resp, body = call(t, srv, http.MethodPost, "/purchase", alice, `{"token_amount":0,"payment_method":"card"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, float64(15), body["balance"])

	resp, body = call(t, srv, http.MethodGet, "/balance", alice, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(15), body["balance"])
}

func TestRouter_Access(t *testing.T) {
	srv := newTestServer(t)
	alice := bearer(t, "alice", auth.RoleInvestor)
	ops := bearer(t, "ops", auth.RoleAdmin)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health is public", http.MethodGet, "/healthz", "", http.StatusOK},
		{"balance needs a token", http.MethodGet, "/balance", "", http.StatusUnauthorized},
		{"investor cannot read another balance", http.MethodGet, "/balance?user_id=bob", alice, http.StatusForbidden},
		{"admin can read another balance", http.MethodGet, "/balance?user_id=bob", ops, http.StatusOK},
		{"investor cannot audit", http.MethodGet, "/admin/audit/properties/prop-1", alice, http.StatusForbidden},
		{"admin audits a property", http.MethodGet, "/admin/audit/properties/prop-1", ops, http.StatusOK},
		{"admin audits an unknown account", http.MethodGet, "/admin/audit/accounts/nobody", ops, http.StatusNotFound},
		{"admin triggers reconciliation", http.MethodPost, "/admin/reconcile", ops, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := call(t, srv, tt.method, tt.path, tt.token, "")
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
