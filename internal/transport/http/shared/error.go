// Package shared centralizes domain error translation for HTTP handlers.
package shared

import (
	"errors"
	"net/http"

	pkgerrors "tokengate/pkg/domain-errors"
	"tokengate/pkg/platform/httputil"
)

// WriteError translates transport-agnostic domain errors into HTTP status
// codes and a stable JSON error shape.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *pkgerrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]string{
			"error": string(domainErr.Code),
		}
		if domainErr.Message != "" {
			response["error_description"] = domainErr.Message
		}
		httputil.WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), response)
		return
	}

	// Fallback for unexpected errors
	httputil.WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": string(pkgerrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code pkgerrors.Code) int {
	switch code {
	case pkgerrors.CodeNotFound:
		return http.StatusNotFound
	case pkgerrors.CodeBadRequest, pkgerrors.CodeInvalidInput,
		pkgerrors.CodeInvalidAddress, pkgerrors.CodeInvalidAmount,
		pkgerrors.CodeBatchTooLarge:
		return http.StatusBadRequest
	case pkgerrors.CodeConflict, pkgerrors.CodeAlreadyPaused, pkgerrors.CodeNotPaused,
		pkgerrors.CodeApproveRace, pkgerrors.CodeReentrant:
		return http.StatusConflict
	case pkgerrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case pkgerrors.CodeForbidden, pkgerrors.CodeAccountBlacklisted,
		pkgerrors.CodeSenderNotWhitelisted, pkgerrors.CodeRecipientNotWhitelisted:
		return http.StatusForbidden
	case pkgerrors.CodePaused:
		return http.StatusServiceUnavailable
	case pkgerrors.CodeInsufficientBalance, pkgerrors.CodeInsufficientAllowance,
		pkgerrors.CodeOverflow:
		return http.StatusUnprocessableEntity
	case pkgerrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
