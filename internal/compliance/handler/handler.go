package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tokengate/internal/compliance/models"
	"tokengate/internal/platform/middleware"
	"tokengate/internal/transport/http/shared"
	"tokengate/pkg/domain"
	pkgerrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/httputil"
)

// Service defines the compliance operations exposed over HTTP.
type Service interface {
	AccountFlags(ctx context.Context, account domain.Address) (models.Flags, error)
	SetWhitelisted(ctx context.Context, caller, account domain.Address, value bool) error
	SetBlacklisted(ctx context.Context, caller, account domain.Address, value bool) error
	BatchWhitelist(ctx context.Context, caller domain.Address, accounts []domain.Address, value bool) error
	BatchBlacklist(ctx context.Context, caller domain.Address, accounts []domain.Address, value bool) error
	SetWhitelistingEnabled(ctx context.Context, caller domain.Address, enabled bool) error
	Pause(ctx context.Context, caller domain.Address) error
	Unpause(ctx context.Context, caller domain.Address) error
}

// Handler handles compliance endpoints.
type Handler struct {
	logger     *slog.Logger
	compliance Service
}

// New creates a compliance Handler.
func New(compliance Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, compliance: compliance}
}

// Register registers the compliance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compliance/whitelist", h.handleFlag(h.compliance.SetWhitelisted))
	r.Post("/compliance/blacklist", h.handleFlag(h.compliance.SetBlacklisted))
	r.Post("/compliance/whitelist/batch", h.handleBatch(h.compliance.BatchWhitelist))
	r.Post("/compliance/blacklist/batch", h.handleBatch(h.compliance.BatchBlacklist))
	r.Post("/compliance/whitelisting", h.handleSetWhitelisting)
	r.Get("/compliance/accounts/{address}", h.handleGetAccount)
	r.Post("/admin/pause", h.handlePause)
	r.Post("/admin/unpause", h.handleUnpause)
}

func (h *Handler) handleFlag(apply func(context.Context, domain.Address, domain.Address, bool) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller := middleware.GetCaller(ctx)

		var req flagRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			h.warnDecode(ctx, err)
			shared.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
			return
		}
		account, err := domain.ParseAddress(req.Address)
		if err != nil {
			shared.WriteError(w, err)
			return
		}

		if err := apply(ctx, caller, account, req.Status); err != nil {
			h.logger.ErrorContext(ctx, "failed to update compliance flag",
				"request_id", middleware.GetRequestID(ctx),
				"error", err,
			)
			shared.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "applied", Accounts: 1})
	}
}

func (h *Handler) handleBatch(apply func(context.Context, domain.Address, []domain.Address, bool) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		caller := middleware.GetCaller(ctx)

		var req batchFlagRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			h.warnDecode(ctx, err)
			shared.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
			return
		}
		accounts := make([]domain.Address, 0, len(req.Addresses))
		for _, raw := range req.Addresses {
			// Empty entries stand for the zero address; the service skips them.
			if raw == "" {
				accounts = append(accounts, domain.ZeroAddress)
				continue
			}
			account, err := domain.ParseAddress(raw)
			if err != nil {
				shared.WriteError(w, err)
				return
			}
			accounts = append(accounts, account)
		}

		if err := apply(ctx, caller, accounts, req.Status); err != nil {
			h.logger.ErrorContext(ctx, "failed to apply compliance batch",
				"request_id", middleware.GetRequestID(ctx),
				"size", len(accounts),
				"error", err,
			)
			shared.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "applied", Accounts: len(accounts)})
	}
}

func (h *Handler) handleSetWhitelisting(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req whitelistingRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		h.warnDecode(ctx, err)
		shared.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.compliance.SetWhitelistingEnabled(ctx, caller, req.Enabled); err != nil {
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "applied"})
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	flags, err := h.compliance.AccountFlags(ctx, account)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	res := accountFlagsResponse{
		Address:     account.String(),
		Whitelisted: flags.Whitelisted,
		Blacklisted: flags.Blacklisted,
	}
	if !flags.UpdatedAt.IsZero() {
		res.UpdatedAt = &flags.UpdatedAt
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handlePause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.compliance.Pause(ctx, middleware.GetCaller(ctx)); err != nil {
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "paused"})
}

func (h *Handler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.compliance.Unpause(ctx, middleware.GetCaller(ctx)); err != nil {
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "unpaused"})
}

func (h *Handler) warnDecode(ctx context.Context, err error) {
	h.logger.WarnContext(ctx, "failed to decode compliance request",
		"request_id", middleware.GetRequestID(ctx),
		"error", err,
	)
}
