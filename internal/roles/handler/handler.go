package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tokengate/internal/platform/middleware"
	"tokengate/internal/transport/http/shared"
	"tokengate/pkg/domain"
	pkgerrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/httputil"
)

// Service defines the role registry operations exposed over HTTP.
type Service interface {
	SetWhitelister(ctx context.Context, caller, account domain.Address, enabled bool) error
	SetBlacklister(ctx context.Context, caller, account domain.Address, enabled bool) error
	TransferOwnership(ctx context.Context, caller, newOwner domain.Address) error
}

// Handler handles role registry admin endpoints.
type Handler struct {
	logger *slog.Logger
	roles  Service
}

// New creates a role registry Handler.
func New(roles Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, roles: roles}
}

// Register registers the admin routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/whitelisters", h.handleSetWhitelister)
	r.Post("/admin/blacklisters", h.handleSetBlacklister)
	r.Post("/admin/ownership", h.handleTransferOwnership)
}

func (h *Handler) handleSetWhitelister(w http.ResponseWriter, r *http.Request) {
	h.handleSetRole(w, r, h.roles.SetWhitelister)
}

func (h *Handler) handleSetBlacklister(w http.ResponseWriter, r *http.Request) {
	h.handleSetRole(w, r, h.roles.SetBlacklister)
}

func (h *Handler) handleSetRole(w http.ResponseWriter, r *http.Request, apply func(context.Context, domain.Address, domain.Address, bool) error) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req roleRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode role request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}
	account, err := domain.ParseAddress(req.Address)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := apply(ctx, caller, account, req.Status); err != nil {
		h.logger.ErrorContext(ctx, "failed to update role",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "applied", Address: account.String()})
}

func (h *Handler) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller := middleware.GetCaller(ctx)

	var req ownershipRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode ownership request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, pkgerrors.New(pkgerrors.CodeBadRequest, "invalid request body"))
		return
	}
	newOwner, err := domain.ParseAddress(req.NewOwner)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.roles.TransferOwnership(ctx, caller, newOwner); err != nil {
		h.logger.ErrorContext(ctx, "failed to transfer ownership",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		shared.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statusResponse{Status: "applied", Address: newOwner.String()})
}
