package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	recorder := httptest.NewRecorder()

	RespondWithJSON(recorder, req, http.StatusCreated, "created", map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var envelope Envelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.False(t, envelope.Error)
	assert.Equal(t, "created", envelope.Message)
	assert.Equal(t, map[string]interface{}{"id": "abc"}, envelope.Data)
}

func TestRespondWithError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	recorder := httptest.NewRecorder()

	RespondWithError(recorder, req, http.StatusNotFound, "task not found")

	assert.Equal(t, http.StatusNotFound, recorder.Code)

	var envelope Envelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	assert.True(t, envelope.Error)
	assert.Equal(t, "task not found", envelope.Message)
	assert.Nil(t, envelope.Data)
	assert.Len(t, envelope.TraceID, 32)
}

func TestRespondWithErrorAndLogNeverLeaksError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	recorder := httptest.NewRecorder()

	internal := errors.New("pq: connection to postgres://user:pw@host failed")
	RespondWithErrorAndLog(recorder, req, http.StatusInternalServerError, "internal server error", internal)

	body := recorder.Body.String()
	assert.NotContains(t, body, "postgres://")
	assert.NotContains(t, body, "pq:")

	var envelope Envelope
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))
	assert.True(t, envelope.Error)
	assert.Equal(t, "internal server error", envelope.Message)
}

func TestTraceIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)
	assert.Len(t, traceID, 32)

	other := SetTraceID(context.Background())
	assert.NotEqual(t, traceID, GetTraceID(other))

	assert.Empty(t, GetTraceID(context.Background()))
}
