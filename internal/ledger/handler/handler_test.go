package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/internal/platform/middleware"
	"tokengate/pkg/domain"
	pkgerrors "tokengate/pkg/domain-errors"
)

const (
	caller    = domain.Address("0x00000000000000000000000000000000000000aa")
	recipient = domain.Address("0x00000000000000000000000000000000000000bb")
)

// stubService returns canned results and records the last call.
type stubService struct {
	err        error
	balance    uint64
	supply     uint64
	allowance  uint64
	lastCaller domain.Address
}

func (s *stubService) BalanceOf(_ context.Context, _ domain.Address) (uint64, error) {
	return s.balance, s.err
}
func (s *stubService) TotalSupply(_ context.Context) (uint64, error) { return s.supply, s.err }
func (s *stubService) Allowance(_ context.Context, _, _ domain.Address) (uint64, error) {
	return s.allowance, s.err
}
func (s *stubService) Transfer(_ context.Context, caller, _ domain.Address, _ uint64) error {
	s.lastCaller = caller
	return s.err
}
func (s *stubService) TransferFrom(_ context.Context, caller, _, _ domain.Address, _ uint64) error {
	s.lastCaller = caller
	return s.err
}
func (s *stubService) Approve(_ context.Context, caller, _ domain.Address, _ uint64) error {
	s.lastCaller = caller
	return s.err
}
func (s *stubService) Mint(_ context.Context, caller, _ domain.Address, _ uint64) error {
	s.lastCaller = caller
	return s.err
}
func (s *stubService) BurnFrom(_ context.Context, caller, _ domain.Address, _ uint64) error {
	s.lastCaller = caller
	return s.err
}

func newTestRouter(svc Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	// Inject the authenticated caller the way RequireAuth would.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), middleware.ContextKeyCaller, caller)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	New(svc, logger).Register(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Transfer(t *testing.T) {
	t.Run("applies and passes the authenticated caller", func(t *testing.T) {
		svc := &stubService{}
		rec := doJSON(t, newTestRouter(svc), http.MethodPost, "/ledger/transfer",
			`{"to":"`+recipient.String()+`","amount":25}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, caller, svc.lastCaller)
	})

	t.Run("malformed address is a bad request", func(t *testing.T) {
		rec := doJSON(t, newTestRouter(&stubService{}), http.MethodPost, "/ledger/transfer",
			`{"to":"not-an-address","amount":25}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		rec := doJSON(t, newTestRouter(&stubService{}), http.MethodPost, "/ledger/transfer",
			`{"to":"`+recipient.String()+`","amount":25,"memo":"hi"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"insufficient balance", pkgerrors.New(pkgerrors.CodeInsufficientBalance, ""), http.StatusUnprocessableEntity},
		{"paused", pkgerrors.New(pkgerrors.CodePaused, ""), http.StatusServiceUnavailable},
		{"blacklisted", pkgerrors.New(pkgerrors.CodeAccountBlacklisted, ""), http.StatusForbidden},
		{"not whitelisted", pkgerrors.New(pkgerrors.CodeSenderNotWhitelisted, ""), http.StatusForbidden},
		{"approve race", pkgerrors.New(pkgerrors.CodeApproveRace, ""), http.StatusConflict},
		{"not the owner", pkgerrors.New(pkgerrors.CodeForbidden, ""), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.err}
			rec := doJSON(t, newTestRouter(svc), http.MethodPost, "/ledger/transfer",
				`{"to":"`+recipient.String()+`","amount":1}`)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandler_Reads(t *testing.T) {
	t.Run("balance", func(t *testing.T) {
		svc := &stubService{balance: 77}
		rec := doJSON(t, newTestRouter(svc), http.MethodGet, "/ledger/balances/"+recipient.String(), "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body balanceResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, uint64(77), body.Balance)
	})

	t.Run("supply", func(t *testing.T) {
		svc := &stubService{supply: 1000}
		rec := doJSON(t, newTestRouter(svc), http.MethodGet, "/ledger/supply", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body supplyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, uint64(1000), body.TotalSupply)
	})

	t.Run("allowance requires both query parameters", func(t *testing.T) {
		rec := doJSON(t, newTestRouter(&stubService{}), http.MethodGet,
			"/ledger/allowances?owner="+caller.String(), "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
