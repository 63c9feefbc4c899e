package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/endurancy/platform/internal/catalog"
	"github.com/endurancy/platform/internal/notification"
	"github.com/endurancy/platform/internal/organization"
	"github.com/endurancy/platform/internal/request"
	"github.com/endurancy/platform/internal/storage"
)

// errorStatus maps domain sentinel errors onto HTTP statuses. Anything
// unrecognized is a 500.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, catalog.ErrPlanNotFound),
		errors.Is(err, catalog.ErrModuleNotFound),
		errors.Is(err, organization.ErrNotFound),
		errors.Is(err, notification.ErrNotFound),
		errors.Is(err, notification.ErrTicketNotFound),
		errors.Is(err, request.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, request.ErrPendingRequestExists),
		errors.Is(err, request.ErrModuleAlreadyActive),
		errors.Is(err, request.ErrNotPending):
		return http.StatusConflict
	case errors.Is(err, storage.ErrTooLarge),
		errors.Is(err, storage.ErrUnsupportedType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// The cause stays server-side; the client gets a generic body.
		slog.Error("unhandled service error", "error", err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
