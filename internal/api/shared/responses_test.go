package shared

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/taskman/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithErrorAndLog(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	ctx := logger.WithContext(SetTraceID(req.Context()), log)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	secret := errors.New("query failed for user ann@example.com")
	RespondWithErrorAndLog(rec, req, http.StatusInternalServerError, "Something broke", secret, WithField("name"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Something broke", body.Error)
	assert.Equal(t, "name", body.Field)
	assert.Equal(t, GetTraceID(ctx), body.TraceID)
	assert.NotContains(t, rec.Body.String(), "ann@example.com")

	assert.Contains(t, logs.String(), `"level":"ERROR"`)
	assert.NotContains(t, logs.String(), "ann@example.com", "logged errors must be redacted")
}

func TestRespondWithErrorAndLog_ClientErrorsLogAtDebug(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	req := httptest.NewRequest(http.MethodGet, "/tasks/1", nil)
	req = req.WithContext(logger.WithContext(req.Context(), log))

	RespondWithErrorAndLog(httptest.NewRecorder(), req, http.StatusNotFound, "Not found", errors.New("missing"))
	assert.Contains(t, logs.String(), `"level":"DEBUG"`)

	logs.Reset()
	RespondWithErrorAndLog(httptest.NewRecorder(), req, http.StatusUnauthorized, "no", nil, WithElevatedLogLevel())
	assert.Contains(t, logs.String(), `"level":"WARN"`)
}

func TestTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetTraceID(req.Context()))

	ctx := SetTraceID(req.Context())
	id := GetTraceID(ctx)
	assert.Len(t, id, 32)
	assert.NotEqual(t, id, GetTraceID(SetTraceID(req.Context())))
}
