package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/endurancy/platform/internal/request"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWriteServiceErrorLogsInternalCause(t *testing.T) {
	buf := captureLog(t)

	rec := httptest.NewRecorder()
	writeServiceError(rec, errors.New("connect to database: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "connection refused")
}

func TestWriteServiceErrorClientErrorsNotLogged(t *testing.T) {
	buf := captureLog(t)

	rec := httptest.NewRecorder()
	writeServiceError(rec, request.ErrPendingRequestExists)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), request.ErrPendingRequestExists.Error())
	assert.Empty(t, buf.String())
}
