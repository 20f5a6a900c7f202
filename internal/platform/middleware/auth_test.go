package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokengate/pkg/domain"
)

type stubValidator struct {
	claims *CallerClaims
	err    error
}

func (s *stubValidator) ValidateToken(string) (*CallerClaims, error) {
	return s.claims, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequireAuth(t *testing.T) {
	account := domain.Address("0x" + strings.Repeat("ab", 20))

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetCaller(r.Context()).String()))
	})

	t.Run("missing header rejected", func(t *testing.T) {
		h := RequireAuth(&stubValidator{}, discardLogger())(echo)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ledger/transfer", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		h := RequireAuth(&stubValidator{err: errors.New("bad signature")}, discardLogger())(echo)
		req := httptest.NewRequest(http.MethodPost, "/ledger/transfer", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token without account rejected", func(t *testing.T) {
		h := RequireAuth(&stubValidator{claims: &CallerClaims{}}, discardLogger())(echo)
		req := httptest.NewRequest(http.MethodPost, "/ledger/transfer", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes caller through context", func(t *testing.T) {
		h := RequireAuth(&stubValidator{claims: &CallerClaims{Account: account}}, discardLogger())(echo)
		req := httptest.NewRequest(http.MethodPost, "/ledger/transfer", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, account.String(), rec.Body.String())
	})
}

func TestGetCallerDefaultsToZero(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, GetCaller(req.Context()).IsZero())
}
