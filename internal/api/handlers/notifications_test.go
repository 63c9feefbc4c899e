package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endurancy/platform/internal/auth"
	"github.com/endurancy/platform/internal/models"
	"github.com/endurancy/platform/internal/notification"
)

// stubNotificationService keeps an in-memory inbox so the read-marking
// contract (including mark-all idempotence) is observable.
type stubNotificationService struct {
	inbox []models.Notification
}

func (s *stubNotificationService) GetUserNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range s.inbox {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubNotificationService) GetUnreadNotifications(ctx context.Context, userID int64) ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range s.inbox {
		if n.UserID == userID && !n.IsRead {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *stubNotificationService) MarkAsRead(ctx context.Context, id, userID int64) error {
	for i, n := range s.inbox {
		if n.ID == id && n.UserID == userID {
			s.inbox[i].IsRead = true
			return nil
		}
	}
	return notification.ErrNotFound
}

func (s *stubNotificationService) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	var updated int64
	for i, n := range s.inbox {
		if n.UserID == userID && !n.IsRead {
			s.inbox[i].IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (s *stubNotificationService) Stats(ctx context.Context, userID int64) (*notification.Stats, error) {
	st := &notification.Stats{ByType: map[string]int{}}
	for _, n := range s.inbox {
		if n.UserID != userID {
			continue
		}
		st.Total++
		if !n.IsRead {
			st.Unread++
		}
		st.ByType[n.Type]++
	}
	return st, nil
}

func userCtx(req *http.Request, userID int64) *http.Request {
	return req.WithContext(auth.WithIdentity(req.Context(), &auth.Identity{
		UserID: userID,
		Role:   models.RoleMember,
	}))
}

func seededInbox() *stubNotificationService {
	return &stubNotificationService{inbox: []models.Notification{
		{ID: 1, UserID: 9, Type: models.NotificationInfo},
		{ID: 2, UserID: 9, Type: models.NotificationWarning, IsRead: true},
		{ID: 3, UserID: 9, Type: models.NotificationInfo},
		{ID: 4, UserID: 10, Type: models.NotificationError},
	}}
}

func TestListNotificationsScopedToUser(t *testing.T) {
	h := NewNotificationHandler(seededInbox())

	req := userCtx(httptest.NewRequest(http.MethodGet, "/notifications", nil), 9)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Count)
}

func TestUnreadNotifications(t *testing.T) {
	h := NewNotificationHandler(seededInbox())

	req := userCtx(httptest.NewRequest(http.MethodGet, "/notifications/unread", nil), 9)
	rec := httptest.NewRecorder()
	h.Unread(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
}

func TestStats(t *testing.T) {
	h := NewNotificationHandler(seededInbox())

	req := userCtx(httptest.NewRequest(http.MethodGet, "/notifications/stats", nil), 9)
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var st notification.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.Unread)
	assert.Equal(t, 2, st.ByType[models.NotificationInfo])
	assert.Equal(t, 1, st.ByType[models.NotificationWarning])
}

func markReadRequest(id string, userID int64) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/notifications/"+id+"/read", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	return userCtx(req, userID)
}

func TestMarkRead(t *testing.T) {
	svc := seededInbox()
	h := NewNotificationHandler(svc)

	rec := httptest.NewRecorder()
	h.MarkRead(rec, markReadRequest("1", 9))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.inbox[0].IsRead)
}

func TestMarkReadNotFound(t *testing.T) {
	h := NewNotificationHandler(seededInbox())

	rec := httptest.NewRecorder()
	h.MarkRead(rec, markReadRequest("999", 9))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkReadOtherUsersNotification(t *testing.T) {
	h := NewNotificationHandler(seededInbox())

	// Notification 4 belongs to user 10; user 9 must not be able to flip it.
	rec := httptest.NewRecorder()
	h.MarkRead(rec, markReadRequest("4", 9))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkReadInvalidID(t *testing.T) {
	h := NewNotificationHandler(seededInbox())

	rec := httptest.NewRecorder()
	h.MarkRead(rec, markReadRequest("abc", 9))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkAllReadIdempotent(t *testing.T) {
	h := NewNotificationHandler(seededInbox())

	first := httptest.NewRecorder()
	h.MarkAllRead(first, userCtx(httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil), 9))
	require.Equal(t, http.StatusOK, first.Code)

	var body struct {
		Updated int64 `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Updated)

	second := httptest.NewRecorder()
	h.MarkAllRead(second, userCtx(httptest.NewRequest(http.MethodPost, "/notifications/read-all", nil), 9))
	require.Equal(t, http.StatusOK, second.Code)

	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.Equal(t, int64(0), body.Updated, "second sweep has nothing left to flip")
}
