package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tokengate/internal/ledger/models"
	"tokengate/internal/platform/middleware"
	"tokengate/internal/transport/http/shared"
	"tokengate/pkg/domain"
	pkgerrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/httputil"
)

// Service defines the ledger operations exposed over HTTP.
type Service interface {
	BalanceOf(ctx context.Context, account domain.Address) (uint64, error)
	TotalSupply(ctx context.Context) (uint64, error)
	Allowance(ctx context.Context, owner, spender domain.Address) (uint64, error)
	Transfer(ctx context.Context, caller, to domain.Address, amount uint64) error
	TransferFrom(ctx context.Context, caller, from, to domain.Address, amount uint64) error
	Approve(ctx context.Context, caller, spender domain.Address, amount uint64) error
	Mint(ctx context.Context, caller, to domain.Address, amount uint64) error
	BurnFrom(ctx context.Context, caller, from domain.Address, amount uint64) error
}

// Handler handles ledger endpoints.
type Handler struct {
	logger *slog.Logger
	ledger Service
}

// New creates a ledger Handler.
func New(ledger Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, ledger: ledger}
}

// Register registers the ledger routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/ledger/transfer", h.handleTransfer)
	r.Post("/ledger/transfer-from", h.handleTransferFrom)
	r.Post("/ledger/approve", h.handleApprove)
	r.Post("/ledger/mint", h.handleMint)
	r.Post("/ledger/burn-from", h.handleBurnFrom)
	r.Get("/ledger/balances/{address}", h.handleGetBalance)
	r.Get("/ledger/supply", h.handleGetSupply)
	r.Get("/ledger/allowances", h.handleGetAllowance)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req transferRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		h.warnDecode(ctx, "transfer", err)
		shared.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.ledger.Transfer(ctx, caller, to, req.Amount); err != nil {
		h.logOperationError(ctx, "transfer", err)
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "applied"})
}

func (h *Handler) handleTransferFrom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req transferFromRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		h.warnDecode(ctx, "transfer-from", err)
		shared.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}
	from, err := domain.ParseAddress(req.From)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.ledger.TransferFrom(ctx, caller, from, to, req.Amount); err != nil {
		h.logOperationError(ctx, "transfer-from", err)
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "applied"})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req approveRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		h.warnDecode(ctx, "approve", err)
		shared.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}
	spender, err := domain.ParseAddress(req.Spender)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.ledger.Approve(ctx, caller, spender, req.Amount); err != nil {
		h.logOperationError(ctx, "approve", err)
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "applied"})
}

func (h *Handler) handleMint(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req mintRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		h.warnDecode(ctx, "mint", err)
		shared.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}
	to, err := domain.ParseAddress(req.To)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.ledger.Mint(ctx, caller, to, req.Amount); err != nil {
		h.logOperationError(ctx, "mint", err)
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "applied"})
}

func (h *Handler) handleBurnFrom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req burnRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		h.warnDecode(ctx, "burn-from", err)
		shared.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}
	from, err := domain.ParseAddress(req.From)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.ledger.BurnFrom(ctx, caller, from, req.Amount); err != nil {
		h.logOperationError(ctx, "burn-from", err)
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "applied"})
}

func (h *Handler) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	account, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	balance, err := h.ledger.BalanceOf(r.Context(), account)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, balanceResponse{Address: account.String(), Balance: balance})
}

func (h *Handler) handleGetSupply(w http.ResponseWriter, r *http.Request) {
	supply, err := h.ledger.TotalSupply(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, supplyResponse{TotalSupply: supply})
}

func (h *Handler) handleGetAllowance(w http.ResponseWriter, r *http.Request) {
	owner, err := domain.ParseAddress(r.URL.Query().Get("owner"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	spender, err := domain.ParseAddress(r.URL.Query().Get("spender"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	amount, err := h.ledger.Allowance(r.Context(), owner, spender)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, allowanceResponse{
		Owner:     owner.String(),
		Spender:   spender.String(),
		Amount:    amount,
		Unlimited: amount == models.UnlimitedAllowance,
	})
}

func (h *Handler) warnDecode(ctx context.Context, operation string, err error) {
	h.logger.WarnContext(ctx, "failed to decode ledger request",
		"request_id", middleware.GetRequestID(ctx),
		"operation", operation,
		"error", err,
	)
}

func (h *Handler) logOperationError(ctx context.Context, operation string, err error) {
	h.logger.WarnContext(ctx, "ledger operation rejected",
		"request_id", middleware.GetRequestID(ctx),
		"operation", operation,
		"error", err,
	)
}
