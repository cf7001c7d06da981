package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/lifeline-api/internal/platform/logger"
	"github.com/phrazzld/lifeline-api/internal/service/matching"
	"github.com/stretchr/testify/assert"
)

func TestRespondWithJSON(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, r, http.StatusAccepted, map[string]string{"task_id": "abc"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"task_id":"abc"}`, w.Body.String())
}

func TestRespondWithFailure(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/supply/nearest", nil)
	w := httptest.NewRecorder()

	RespondWithFailure(w, r, http.StatusBadRequest, &matching.Failure{
		Kind:    matching.KindInvalidInput,
		Field:   "lat",
		Message: "is required",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t,
		`{"success":false,"data":null,"error":{"kind":"invalid_input","field":"lat","message":"is required"}}`,
		w.Body.String())
}

func TestRespondWithFailureAndLogRedacts(t *testing.T) {
	buf, log := logger.SetupTestLogger(t)
	r := httptest.NewRequest("POST", "/api/forecast/demand", nil)
	r = r.WithContext(logger.WithLogger(r.Context(), log))
	w := httptest.NewRecorder()

	err := errors.New("dial postgres://lifeline:s3cret@db:5432/lifeline failed")
	RespondWithFailureAndLog(w, r, http.StatusServiceUnavailable, &matching.Failure{
		Kind:    matching.KindUpstreamUnavailable,
		Message: "upstream dependency unavailable",
	}, err)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "postgres")
	assert.Contains(t, buf.String(), "API error response")
	assert.NotContains(t, buf.String(), "s3cret")
}
