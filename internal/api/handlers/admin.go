package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/endurancy/platform/internal/audit"
	"github.com/endurancy/platform/internal/auth"
	"github.com/endurancy/platform/internal/models"
	"github.com/endurancy/platform/internal/request"
)

type RequestAdminService interface {
	List(ctx context.Context, f request.ListFilter) ([]models.Request, error)
	Approve(ctx context.Context, id, reviewedBy int64) (*models.Request, error)
	Reject(ctx context.Context, id, reviewedBy int64, reason string) (*models.Request, error)
}

type AuditReader interface {
	GetLogs(ctx context.Context, q audit.Query) ([]models.AuditLog, error)
}

type SweepEnqueuer interface {
	EnqueueNotificationCleanup() error
	EnqueueSystemScan() error
}

type TicketNotifier interface {
	CreateTicketNotification(ctx context.Context, ticketID int64, typ, title, message string, userID int64) (*models.Notification, error)
}

type AdminHandler struct {
	requests RequestAdminService
	audits   AuditReader
	sweeps   SweepEnqueuer
	tickets  TicketNotifier
}

func NewAdminHandler(requests RequestAdminService, audits AuditReader, sweeps SweepEnqueuer, tickets TicketNotifier) *AdminHandler {
	return &AdminHandler{requests: requests, audits: audits, sweeps: sweeps, tickets: tickets}
}

// NotifyTicket lets a support agent push a ticket-scoped notification to
// a user's inbox; the organization is derived from the ticket row.
func (h *AdminHandler) NotifyTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ticket ID"})
		return
	}

	var body struct {
		UserID  int64  `json:"userId"`
		Type    string `json:"type"`
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == 0 || body.Title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId and title are required"})
		return
	}

	n, err := h.tickets.CreateTicketNotification(r.Context(), ticketID, body.Type, body.Title, body.Message, body.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *AdminHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	f := request.ListFilter{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
	}

	requests, err := h.requests.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"requests": requests,
		"count":    len(requests),
	})
}

func (h *AdminHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request ID"})
		return
	}

	reviewer := auth.IdentityFromContext(r.Context()).UserID
	req, err := h.requests.Approve(r.Context(), id, reviewer)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *AdminHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request ID"})
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// Body is optional for rejections.
	_ = json.NewDecoder(r.Body).Decode(&body)

	reviewer := auth.IdentityFromContext(r.Context()).UserID
	req, err := h.requests.Reject(r.Context(), id, reviewer, body.Reason)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	q := audit.Query{Action: r.URL.Query().Get("action")}

	if v := r.URL.Query().Get("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.StartDate = &t
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.EndDate = &t
		}
	}
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))

	logs, err := h.audits.GetLogs(r.Context(), q)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"count": len(logs),
	})
}

func (h *AdminHandler) TriggerCleanup(w http.ResponseWriter, r *http.Request) {
	if err := h.sweeps.EnqueueNotificationCleanup(); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "cleanup enqueued"})
}

func (h *AdminHandler) TriggerSystemScan(w http.ResponseWriter, r *http.Request) {
	if err := h.sweeps.EnqueueSystemScan(); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "system scan enqueued"})
}
