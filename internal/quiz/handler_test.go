package quiz

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-player/internal/models"
)

func newTestRouter(f *fixture) *mux.Router {
	router := mux.NewRouter()
	NewHandler(f.session).Register(router.PathPrefix("/api").Subrouter())
	return router
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) stateResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp stateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandlerGetState(t *testing.T) {
	f := newFixture(t, 3)
	f.start(t)
	router := newTestRouter(f)

	rec := doRequest(t, router, http.MethodGet, "/api/quiz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "right 1", "correct answers must not leak")

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, models.StatusActive, snap.Status)
	assert.Equal(t, 3, snap.Total)
}

func TestHandlerNavigation(t *testing.T) {
	f := newFixture(t, 3)
	f.start(t)
	router := newTestRouter(f)

	resp := decodeState(t, doRequest(t, router, http.MethodPost, "/api/quiz/next", ""))
	assert.True(t, resp.Applied)
	assert.Equal(t, 1, resp.State.CurrentIndex)

	resp = decodeState(t, doRequest(t, router, http.MethodPost, "/api/quiz/navigate", `{"index":7}`))
	assert.False(t, resp.Applied)
	assert.Equal(t, 1, resp.State.CurrentIndex)

	resp = decodeState(t, doRequest(t, router, http.MethodPost, "/api/quiz/jump", `{"questionId":3}`))
	assert.True(t, resp.Applied)
	assert.Equal(t, 2, resp.State.CurrentIndex)

	resp = decodeState(t, doRequest(t, router, http.MethodPost, "/api/quiz/previous", ""))
	assert.True(t, resp.Applied)
	assert.Equal(t, 1, resp.State.CurrentIndex)
}

func TestHandlerAnswerAndSubmit(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t)
	router := newTestRouter(f)

	resp := decodeState(t, doRequest(t, router, http.MethodPost, "/api/quiz/answer", `{"questionId":1,"value":"right 1"}`))
	assert.True(t, resp.Applied)
	assert.Equal(t, 1, resp.State.AnsweredCount)

	resp = decodeState(t, doRequest(t, router, http.MethodPost, "/api/quiz/submit", `{"confirm":false}`))
	assert.False(t, resp.Applied)
	assert.Nil(t, resp.Result)

	resp = decodeState(t, doRequest(t, router, http.MethodPost, "/api/quiz/submit", `{"confirm":true}`))
	assert.True(t, resp.Applied)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 50.0, resp.Result.Score)
	assert.Equal(t, models.StatusSubmitted, resp.State.Status)
}

func TestHandlerRejectsBadBodies(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t)
	router := newTestRouter(f)

	for _, path := range []string{"/api/quiz/navigate", "/api/quiz/jump", "/api/quiz/answer", "/api/quiz/submit", "/api/quiz/reset"} {
		rec := doRequest(t, router, http.MethodPost, path, "{")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	rec := doRequest(t, router, http.MethodPost, "/api/quiz/answer", `{"questionId":1,"value":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerReset(t *testing.T) {
	f := newFixture(t, 2)
	f.start(t)
	router := newTestRouter(f)

	resp := decodeState(t, doRequest(t, router, http.MethodPost, "/api/quiz/reset", `{"confirm":true}`))
	assert.True(t, resp.Applied)
	assert.Equal(t, models.StatusActive, resp.State.Status)
	assert.Equal(t, 2, f.provider.Calls())

	f.provider.SetErr(errors.New("unreachable"))
	rec := doRequest(t, router, http.MethodPost, "/api/quiz/reset", `{"confirm":true}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
	assert.Equal(t, models.StatusIdle, f.session.Snapshot().Status)
}
