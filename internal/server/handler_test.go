package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/jiractx/internal/assembler"
	"github.com/danielolaszy/jiractx/internal/cache"
	"github.com/danielolaszy/jiractx/internal/config"
	"github.com/danielolaszy/jiractx/internal/jira"
	"github.com/danielolaszy/jiractx/pkg/models"
)

// newFakeJira serves PROJ-77 and answers 404 for every other key.
func newFakeJira(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path != "/rest/api/2/issue/PROJ-77" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errorMessages":["Issue does not exist"]}`))
			return
		}
		_, _ = w.Write([]byte(`{"key":"PROJ-77","fields":{"summary":"Fix login","status":{"name":"Open"},"issuetype":{"name":"Bug"}}}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestRouter(t *testing.T, jiraURL string) http.Handler {
	t.Helper()
	client, err := jira.NewClient(config.JiraConfig{URL: jiraURL, Email: "dev@example.com", APIToken: "token"})
	require.NoError(t, err)
	c, err := cache.New(cache.Config{})
	require.NoError(t, err)
	return NewRouter(NewContextHandler(assembler.New(c, client)))
}

func postContext(t *testing.T, router http.Handler, body string) (*httptest.ResponseRecorder, models.ContextResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/context", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var resp models.ContextResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestContextEndpoint(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantTitles []string
	}{
		{
			name:       "Branch with known issue",
			body:       `{"filePath":"auth/login.go","selection":"","repoInfo":{"branch":"feature/PROJ-77-login"}}`,
			wantStatus: http.StatusOK,
			wantTitles: []string{"PROJ-77: Fix login"},
		},
		{
			name:       "Branch without key",
			body:       `{"filePath":"go.mod","repoInfo":{"branch":"chore/update-deps"}}`,
			wantStatus: http.StatusOK,
			wantTitles: []string{},
		},
		{
			name:       "Unknown issue",
			body:       `{"repoInfo":{"branch":"bugfix/XYZ-1"}}`,
			wantStatus: http.StatusOK,
			wantTitles: []string{},
		},
		{
			name:       "No repo info",
			body:       `{"filePath":"main.go","filePaths":["a.go","b.go"]}`,
			wantStatus: http.StatusOK,
			wantTitles: []string{},
		},
		{
			name:       "Malformed body",
			body:       `{"repoInfo":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	var calls atomic.Int32
	router := newTestRouter(t, newFakeJira(t, &calls).URL)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := postContext(t, router, tc.body)
			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus != http.StatusOK {
				return
			}

			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			require.NotNil(t, resp.Context, "context must be a list, not null")
			titles := []string{}
			for _, item := range resp.Context {
				titles = append(titles, item.Title)
			}
			assert.Equal(t, tc.wantTitles, titles)
		})
	}
}

func TestContextEndpointServesRepeatsFromCache(t *testing.T) {
	var calls atomic.Int32
	router := newTestRouter(t, newFakeJira(t, &calls).URL)

	for i := 0; i < 3; i++ {
		_, resp := postContext(t, router, `{"repoInfo":{"branch":"feature/PROJ-77-login"}}`)
		require.Len(t, resp.Context, 1)
		assert.Equal(t, "PROJ-77", resp.Context[0].Metadata.IssueKey)
	}
	for i := 0; i < 3; i++ {
		postContext(t, router, `{"repoInfo":{"branch":"bugfix/XYZ-1"}}`)
	}

	assert.Equal(t, int32(2), calls.Load())
}

func TestContextEndpointJiraUnavailable(t *testing.T) {
	jiraServer := httptest.NewServer(http.NotFoundHandler())
	router := newTestRouter(t, jiraServer.URL)
	jiraServer.Close()

	rec, resp := postContext(t, router, `{"repoInfo":{"branch":"feature/PROJ-77-login"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.Context)
}

func TestContextEndpointDeadlineAnswersEmpty(t *testing.T) {
	release := make(chan struct{})
	jiraServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(jiraServer.Close)
	t.Cleanup(func() { close(release) })

	client, err := jira.NewClient(config.JiraConfig{URL: jiraServer.URL, Email: "dev@example.com", APIToken: "token"})
	require.NoError(t, err)
	c, err := cache.New(cache.Config{})
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(RequestDeadline(50 * time.Millisecond))
	router.Post("/context", NewContextHandler(assembler.New(c, client)).Context)

	rec, resp := postContext(t, router, `{"repoInfo":{"branch":"feature/PROJ-77-login"}}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, resp.Context)
	assert.Empty(t, resp.Context)
}

func TestRequestDeadlineSetsContextDeadline(t *testing.T) {
	var hasDeadline bool
	handler := RequestDeadline(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, hasDeadline)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz(t *testing.T) {
	var calls atomic.Int32
	router := newTestRouter(t, newFakeJira(t, &calls).URL)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
