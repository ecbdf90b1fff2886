package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openingcoach/openingcoach/internal/api/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_WrapsInDataEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	response.JSON(w, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var env struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	assert.Equal(t, "world", env.Data["hello"])
}

func TestAccepted_Status(t *testing.T) {
	w := httptest.NewRecorder()
	response.Accepted(w, "queued")

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestError_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusNotFound, w.Code)

	var env struct {
		Error struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, "Job not found", env.Error.Message)
	assert.Equal(t, "abc", env.Error.Details["id"])
}

func TestError_OmitsEmptyDetails(t *testing.T) {
	w := httptest.NewRecorder()
	response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "bad input", nil)

	var raw map[string]map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	_, hasDetails := raw["error"]["details"]
	assert.False(t, hasDetails)
}
