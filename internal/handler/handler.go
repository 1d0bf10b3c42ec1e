package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/auth"
	"github.com/honeynil/prop-token-ledger/internal/infrastructure/observability"
	service "github.com/honeynil/prop-token-ledger/internal/services"
	"github.com/honeynil/prop-token-ledger/internal/sweeper"
	pkgerrors "github.com/honeynil/prop-token-ledger/pkg/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Reconciler triggers an immediate reconciliation pass.
type Reconciler interface {
	RunOnce(ctx context.Context) (*sweeper.Summary, error)
}

type Handler struct {
	service    service.LedgerService
	reconciler Reconciler
}

func NewHandler(s service.LedgerService, reconciler Reconciler) *Handler {
	return &Handler{service: s, reconciler: reconciler}
}

type errorResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code"`
	Error     string `json:"error,omitempty"`
	Balance   *int64 `json:"balance,omitempty"`
}

type purchaseResponse struct {
	Success bool `json:"success"`
	*service.PurchaseResult
}

type investResponse struct {
	Success bool `json:"success"`
	*service.InvestResult
}

func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
}

func (h *Handler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/purchase", h.Purchase).Methods(http.MethodPost)
	r.HandleFunc("/invest", h.Invest).Methods(http.MethodPost)
	r.HandleFunc("/balance", h.GetBalance).Methods(http.MethodGet)
	r.HandleFunc("/transactions", h.ListTransactions).Methods(http.MethodGet)
	r.HandleFunc("/payment-methods", h.ListPaymentMethods).Methods(http.MethodGet)
}

func (h *Handler) RegisterAdminRoutes(r *mux.Router) {
	r.HandleFunc("/audit/accounts/{userID}", h.AuditAccount).Methods(http.MethodGet)
	r.HandleFunc("/audit/properties/{propertyID}", h.AuditProperty).Methods(http.MethodGet)
	r.HandleFunc("/reconcile", h.Reconcile).Methods(http.MethodPost)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Purchase(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID           string `json:"user_id"`
		TokenAmount      int64  `json:"token_amount"`
		PaymentMethod    string `json:"payment_method"`
		PaymentReference string `json:"payment_reference"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, "", err)
		return
	}
	userID, err := subject(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}

	res, err := h.service.PurchaseTokens(r.Context(), service.PurchaseRequest{
		UserID:           userID,
		TokenAmount:      req.TokenAmount,
		PaymentMethod:    req.PaymentMethod,
		PaymentReference: strings.TrimSpace(req.PaymentReference),
	})
	if err != nil {
		h.writeFailure(w, r, userID, balanceOf(res), err)
		return
	}
	writeJSON(w, http.StatusOK, purchaseResponse{Success: true, PurchaseResult: res})
}

func (h *Handler) Invest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"user_id"`
		PropertyID  string `json:"property_id"`
		TokenAmount int64  `json:"token_amount"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, "", err)
		return
	}
	userID, err := subject(r.Context(), req.UserID)
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}

	res, err := h.service.InvestTokens(r.Context(), service.InvestRequest{
		UserID:      userID,
		PropertyID:  req.PropertyID,
		TokenAmount: req.TokenAmount,
	})
	if err != nil {
		var balance *int64
		if res != nil {
			balance = &res.NewBalance
		}
		h.writeFailure(w, r, userID, balance, err)
		return
	}
	writeJSON(w, http.StatusOK, investResponse{Success: true, InvestResult: res})
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := subject(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	balance, err := h.service.GetBalance(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": userID, "balance": balance})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := subject(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeError(w, r, userID, err)
		return
	}
	txs, err := h.service.ListTransactions(r.Context(), userID, limit)
	if err != nil {
		h.writeError(w, r, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (h *Handler) ListPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ListPaymentMethods(r.Context())
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, methods)
}

func (h *Handler) AuditAccount(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	audit, err := h.service.AuditAccount(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, userID, err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

func (h *Handler) AuditProperty(w http.ResponseWriter, r *http.Request) {
	audit, err := h.service.AuditProperty(r.Context(), mux.Vars(r)["propertyID"])
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reconciler.RunOnce(r.Context())
	if err != nil {
		h.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// writeFailure reports a failed mutation with the caller's current balance. When
// the service could not supply one it is looked up.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, userID string, balance *int64, err error) {
	if balance == nil && userID != "" {
		if b, berr := h.service.GetBalance(r.Context(), userID); berr == nil {
			balance = &b
		}
	}
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		observability.WithContext(r.Context(), "path", r.URL.Path).Error("request failed", "user_id", userID, "error", err)
	}
	writeJSON(w, status, errorResponse{ErrorCode: pkgerrors.Code(err), Error: publicMessage(status, err), Balance: balance})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, userID string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		observability.WithContext(r.Context(), "path", r.URL.Path).Error("request failed", "user_id", userID, "error", err)
	}
	writeJSON(w, status, errorResponse{ErrorCode: pkgerrors.Code(err), Error: publicMessage(status, err)})
}

func statusFor(err error) int {
	switch pkgerrors.Code(err) {
	case pkgerrors.CodeInvalidRequest:
		return http.StatusBadRequest
	case pkgerrors.CodeInsufficientBalance:
		return http.StatusPaymentRequired
	case pkgerrors.CodeInsufficientInventory, pkgerrors.CodeRequestInProgress:
		return http.StatusConflict
	case pkgerrors.CodeNotFound:
		return http.StatusNotFound
	case pkgerrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case pkgerrors.CodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(status int, err error) string {
	if status >= http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

func balanceOf(res *service.PurchaseResult) *int64 {
	if res == nil {
		return nil
	}
	return &res.NewBalance
}

// subject resolves whose ledger a request acts on. Only admins may name another user.
func subject(ctx context.Context, requested string) (string, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok || id.UserID == "" {
		return "", pkgerrors.ErrUnauthorized
	}
	if requested == "" || requested == id.UserID {
		return id.UserID, nil
	}
	if !id.IsAdmin() {
		return "", pkgerrors.ErrForbidden
	}
	return requested, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field") {
			return fmt.Errorf("%w: %s", pkgerrors.ErrUnknownField, strings.TrimPrefix(err.Error(), "json: unknown field "))
		}
		return fmt.Errorf("%w: malformed body: %v", pkgerrors.ErrInvalidRequest, err)
	}
	return nil
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultListLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", pkgerrors.ErrInvalidRequest)
	}
	return min(n, maxListLimit), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		slog.Error("failed to encode response", "error", err)
	}
}
