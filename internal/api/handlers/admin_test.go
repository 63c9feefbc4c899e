package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endurancy/platform/internal/audit"
	"github.com/endurancy/platform/internal/auth"
	"github.com/endurancy/platform/internal/models"
	"github.com/endurancy/platform/internal/notification"
	"github.com/endurancy/platform/internal/request"
)

type stubRequestAdmin struct {
	requests []models.Request
	err      error
	gotID    int64
	reason   string
}

func (s *stubRequestAdmin) List(ctx context.Context, f request.ListFilter) ([]models.Request, error) {
	return s.requests, s.err
}

func (s *stubRequestAdmin) Approve(ctx context.Context, id, reviewedBy int64) (*models.Request, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.gotID = id
	return &models.Request{ID: id, Status: models.RequestStatusApproved}, nil
}

func (s *stubRequestAdmin) Reject(ctx context.Context, id, reviewedBy int64, reason string) (*models.Request, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.gotID = id
	s.reason = reason
	return &models.Request{ID: id, Status: models.RequestStatusRejected}, nil
}

type stubAuditReader struct{}

func (stubAuditReader) GetLogs(ctx context.Context, q audit.Query) ([]models.AuditLog, error) {
	return nil, nil
}

type stubEnqueuer struct {
	cleanups int
	scans    int
}

func (s *stubEnqueuer) EnqueueNotificationCleanup() error { s.cleanups++; return nil }
func (s *stubEnqueuer) EnqueueSystemScan() error          { s.scans++; return nil }

type stubTicketNotifier struct {
	err       error
	gotTicket int64
}

func (s *stubTicketNotifier) CreateTicketNotification(ctx context.Context, ticketID int64, typ, title, message string, userID int64) (*models.Notification, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.gotTicket = ticketID
	return &models.Notification{ID: 1, UserID: userID, TicketID: &ticketID, Title: title, Type: typ}, nil
}

func adminCtx(req *http.Request) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{
		UserID: 1,
		Role:   models.RoleAdmin,
	}))
}

func withURLParam(req *http.Request, key, val string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, val)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestApproveRequest(t *testing.T) {
	svc := &stubRequestAdmin{}
	h := NewAdminHandler(svc, stubAuditReader{}, &stubEnqueuer{}, &stubTicketNotifier{})

	req := adminCtx(withURLParam(httptest.NewRequest(http.MethodPost, "/requests/17/approve", nil), "id", "17"))
	rec := httptest.NewRecorder()
	h.ApproveRequest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(17), svc.gotID)

	var body models.Request
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, models.RequestStatusApproved, body.Status)
}

func TestApproveNonPendingConflicts(t *testing.T) {
	h := NewAdminHandler(&stubRequestAdmin{err: request.ErrNotPending}, stubAuditReader{}, &stubEnqueuer{}, &stubTicketNotifier{})

	req := adminCtx(withURLParam(httptest.NewRequest(http.MethodPost, "/requests/17/approve", nil), "id", "17"))
	rec := httptest.NewRecorder()
	h.ApproveRequest(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApproveUnknownRequest(t *testing.T) {
	h := NewAdminHandler(&stubRequestAdmin{err: request.ErrNotFound}, stubAuditReader{}, &stubEnqueuer{}, &stubTicketNotifier{})

	req := adminCtx(withURLParam(httptest.NewRequest(http.MethodPost, "/requests/99/approve", nil), "id", "99"))
	rec := httptest.NewRecorder()
	h.ApproveRequest(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectRequestWithReason(t *testing.T) {
	svc := &stubRequestAdmin{}
	h := NewAdminHandler(svc, stubAuditReader{}, &stubEnqueuer{}, &stubTicketNotifier{})

	req := adminCtx(withURLParam(httptest.NewRequest(http.MethodPost, "/requests/17/reject",
		strings.NewReader(`{"reason":"plano indisponível"}`)), "id", "17"))
	rec := httptest.NewRecorder()
	h.RejectRequest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "plano indisponível", svc.reason)
}

func TestRejectRequestWithoutBody(t *testing.T) {
	svc := &stubRequestAdmin{}
	h := NewAdminHandler(svc, stubAuditReader{}, &stubEnqueuer{}, &stubTicketNotifier{})

	req := adminCtx(withURLParam(httptest.NewRequest(http.MethodPost, "/requests/17/reject", nil), "id", "17"))
	rec := httptest.NewRecorder()
	h.RejectRequest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.reason)
}

func TestInvalidRequestID(t *testing.T) {
	h := NewAdminHandler(&stubRequestAdmin{}, stubAuditReader{}, &stubEnqueuer{}, &stubTicketNotifier{})

	req := adminCtx(withURLParam(httptest.NewRequest(http.MethodPost, "/requests/abc/approve", nil), "id", "abc"))
	rec := httptest.NewRecorder()
	h.ApproveRequest(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTriggerSweeps(t *testing.T) {
	enq := &stubEnqueuer{}
	h := NewAdminHandler(&stubRequestAdmin{}, stubAuditReader{}, enq, &stubTicketNotifier{})

	rec := httptest.NewRecorder()
	h.TriggerCleanup(rec, adminCtx(httptest.NewRequest(http.MethodPost, "/notifications/cleanup", nil)))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, enq.cleanups)

	rec = httptest.NewRecorder()
	h.TriggerSystemScan(rec, adminCtx(httptest.NewRequest(http.MethodPost, "/notifications/scan", nil)))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, enq.scans)
}

func TestNotifyTicket(t *testing.T) {
	tickets := &stubTicketNotifier{}
	h := NewAdminHandler(&stubRequestAdmin{}, stubAuditReader{}, &stubEnqueuer{}, tickets)

	req := adminCtx(withURLParam(httptest.NewRequest(http.MethodPost, "/tickets/11/notify",
		strings.NewReader(`{"userId":9,"type":"info","title":"Atualização do ticket"}`)), "id", "11"))
	rec := httptest.NewRecorder()
	h.NotifyTicket(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(11), tickets.gotTicket)
}

func TestNotifyTicketUnknownTicket(t *testing.T) {
	h := NewAdminHandler(&stubRequestAdmin{}, stubAuditReader{}, &stubEnqueuer{},
		&stubTicketNotifier{err: notification.ErrTicketNotFound})

	req := adminCtx(withURLParam(httptest.NewRequest(http.MethodPost, "/tickets/99/notify",
		strings.NewReader(`{"userId":9,"title":"x"}`)), "id", "99"))
	rec := httptest.NewRecorder()
	h.NotifyTicket(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotifyTicketMissingFields(t *testing.T) {
	h := NewAdminHandler(&stubRequestAdmin{}, stubAuditReader{}, &stubEnqueuer{}, &stubTicketNotifier{})

	req := adminCtx(withURLParam(httptest.NewRequest(http.MethodPost, "/tickets/11/notify",
		strings.NewReader(`{"type":"info"}`)), "id", "11"))
	rec := httptest.NewRecorder()
	h.NotifyTicket(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRequestsPassesFilter(t *testing.T) {
	svc := &stubRequestAdmin{requests: []models.Request{{ID: 1, Status: models.RequestStatusPending}}}
	h := NewAdminHandler(svc, stubAuditReader{}, &stubEnqueuer{}, &stubTicketNotifier{})

	req := adminCtx(httptest.NewRequest(http.MethodGet, "/requests?status=pendente&type=plano", nil))
	rec := httptest.NewRecorder()
	h.ListRequests(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}
