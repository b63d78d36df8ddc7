package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trivia/internal/catalog"
	"github.com/jason-s-yu/trivia/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionsHandler(t *testing.T) {
	cat, err := catalog.Parse([]byte(testQuestions), nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	QuestionsHandler(cat).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/questions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Q2", got[1]["question"])
	assert.EqualValues(t, 200, got[1]["points"])
}

func TestQuestionsHandlerEmptyCatalog(t *testing.T) {
	w := httptest.NewRecorder()
	QuestionsHandler(nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/questions", nil))
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListRoomsHandler(t *testing.T) {
	logger := quietLogger()
	hub := NewHub(logger)
	svc := room.NewService(catalog.Empty(), hub, logger, room.Options{})
	defer svc.Close()

	code, err := svc.CreateRoom(uuid.New())
	require.NoError(t, err)
	require.NoError(t, svc.PlayerJoin(uuid.New(), code, "Amy", nil))

	w := httptest.NewRecorder()
	ListRoomsHandler(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

	var body struct {
		Rooms []roomSummary `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []roomSummary{{
		Code:                 code,
		Players:              1,
		HasHost:              true,
		CurrentQuestionIndex: -1,
	}}, body.Rooms)
}

func TestRouterRoutes(t *testing.T) {
	srv, _, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/questions", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRouterServesStaticFilesAndCORS(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>trivia</h1>"), 0o644))

	cat, err := catalog.Parse([]byte(testQuestions), nil)
	require.NoError(t, err)
	logger := quietLogger()
	hub := NewHub(logger)
	svc := room.NewService(cat, hub, logger, room.Options{TimeUnit: time.Hour})
	srv := httptest.NewServer(NewRouter(logger, svc, hub, []string{"https://quiz.example"}, dir))
	t.Cleanup(func() {
		srv.Close()
		svc.Close()
	})

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<h1>trivia</h1>", string(body))

	resp, err = http.Get(srv.URL + "/missing.js")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/questions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://quiz.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://quiz.example", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err = http.NewRequest(http.MethodOptions, srv.URL+"/api/questions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://quiz.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
