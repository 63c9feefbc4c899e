package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/endurancy/platform/internal/auth"
	"github.com/endurancy/platform/internal/models"
	"github.com/endurancy/platform/internal/notification"
)

type NotificationService interface {
	GetUserNotifications(ctx context.Context, userID int64) ([]models.Notification, error)
	GetUnreadNotifications(ctx context.Context, userID int64) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) (int64, error)
	Stats(ctx context.Context, userID int64) (*notification.Stats, error)
}

type NotificationHandler struct {
	svc NotificationService
}

func NewNotificationHandler(svc NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.IdentityFromContext(r.Context()).UserID

	notifications, err := h.svc.GetUserNotifications(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

func (h *NotificationHandler) Unread(w http.ResponseWriter, r *http.Request) {
	userID := auth.IdentityFromContext(r.Context()).UserID

	notifications, err := h.svc.GetUnreadNotifications(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

func (h *NotificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID := auth.IdentityFromContext(r.Context()).UserID

	stats, err := h.svc.Stats(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.IdentityFromContext(r.Context()).UserID

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification ID"})
		return
	}

	if err := h.svc.MarkAsRead(r.Context(), id, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.IdentityFromContext(r.Context()).UserID

	updated, err := h.svc.MarkAllAsRead(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"updated": updated})
}
