package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/jiractx/internal/config"
	"github.com/danielolaszy/jiractx/pkg/models"
)

func TestExtractCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"extract", "feature/ABC-123-desc", "main", "release/sprint-10/ABC-42"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())
	assert.Equal(t, "ABC-123\n-\nABC-42\n", out.String())
}

func TestIssuesCommand(t *testing.T) {
	var gotJQL, gotMax string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotJQL = r.URL.Query().Get("jql")
		gotMax = r.URL.Query().Get("maxResults")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"startAt":0,"maxResults":5,"total":1,"issues":[
			{"key":"PROJ-77","fields":{"summary":"Fix login","status":{"name":"Open"},"issuetype":{"name":"Bug"},"updated":"2024-01-03T11:30:00.000+0000"}}
		]}`))
	}))
	t.Cleanup(server.Close)

	t.Setenv("JIRA_URL", server.URL)
	t.Setenv("JIRA_EMAIL", "dev@example.com")
	t.Setenv("JIRA_API_TOKEN", "token")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"issues", "PROJ", "--max", "5"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())
	assert.Equal(t, `project = "PROJ" ORDER BY updated DESC`, gotJQL)
	assert.Equal(t, "5", gotMax)

	var issues []models.ProjectIssue
	require.NoError(t, json.Unmarshal(out.Bytes(), &issues))
	require.Len(t, issues, 1)
	assert.Equal(t, "PROJ-77", issues[0].Key)
	assert.Equal(t, "Unassigned", issues[0].Assignee)
}

func TestContextRequestFromFlags(t *testing.T) {
	testCases := []struct {
		name       string
		args       []string
		wantErr    bool
		wantBranch string
		wantPR     int
	}{
		{
			name:       "Branch only",
			args:       []string{"--branch", "feature/PROJ-77-login"},
			wantBranch: "feature/PROJ-77-login",
		},
		{
			name:   "Repository and pull request",
			args:   []string{"-r", "octo/app", "--pr", "42"},
			wantPR: 42,
		},
		{
			name:    "Nothing given",
			args:    []string{},
			wantErr: true,
		},
		{
			name:    "Repository without pull request",
			args:    []string{"-r", "octo/app"},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := &cobra.Command{Use: "context"}
			addContextFlags(cmd)
			require.NoError(t, cmd.ParseFlags(tc.args))

			req, err := contextRequestFromFlags(cmd)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, req.RepoInfo)
			assert.Equal(t, tc.wantBranch, req.RepoInfo.Branch)
			assert.Equal(t, tc.wantPR, req.RepoInfo.PullRequest)
		})
	}
}

func TestApplyServeFlags(t *testing.T) {
	base := func() *config.Config {
		return &config.Config{
			Server: config.ServerConfig{Port: "8080"},
			Cache:  config.CacheConfig{TTL: 5 * time.Minute, Size: 100},
		}
	}

	t.Run("Unset flags keep environment values", func(t *testing.T) {
		cmd := &cobra.Command{Use: "serve"}
		addServeFlags(cmd)
		require.NoError(t, cmd.ParseFlags(nil))

		cfg := base()
		require.NoError(t, applyServeFlags(cmd, cfg))
		assert.Equal(t, base(), cfg)
	})

	t.Run("Set flags override", func(t *testing.T) {
		cmd := &cobra.Command{Use: "serve"}
		addServeFlags(cmd)
		require.NoError(t, cmd.ParseFlags([]string{"--port", "9000", "--cache-ttl", "1m", "--cache-size", "10"}))

		cfg := base()
		require.NoError(t, applyServeFlags(cmd, cfg))
		assert.Equal(t, "9000", cfg.Server.Port)
		assert.Equal(t, time.Minute, cfg.Cache.TTL)
		assert.Equal(t, 10, cfg.Cache.Size)
	})

	t.Run("Non-positive values rejected", func(t *testing.T) {
		cmd := &cobra.Command{Use: "serve"}
		addServeFlags(cmd)
		require.NoError(t, cmd.ParseFlags([]string{"--cache-size", "0"}))

		assert.Error(t, applyServeFlags(cmd, base()))
	})

	t.Run("Sub-second TTL rejected", func(t *testing.T) {
		cmd := &cobra.Command{Use: "serve"}
		addServeFlags(cmd)
		require.NoError(t, cmd.ParseFlags([]string{"--cache-ttl", "300ns"}))

		assert.Error(t, applyServeFlags(cmd, base()))
	})
}

func TestNewAssemblerRequiresJiraConfig(t *testing.T) {
	cfg := &config.Config{
		Jira:  config.JiraConfig{URL: "https://example.atlassian.net"},
		Cache: config.CacheConfig{TTL: time.Minute, Size: 10},
	}

	a, err := newAssembler(cfg)
	assert.Nil(t, a)

	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"JIRA_EMAIL", "JIRA_API_TOKEN"}, cfgErr.Missing)
}

func TestNewAssemblerWithGitHub(t *testing.T) {
	cfg := &config.Config{
		Jira:   config.JiraConfig{URL: "https://example.atlassian.net", Email: "dev@example.com", APIToken: "token"},
		GitHub: config.GitHubConfig{Token: "gh-token", Domain: "github.com"},
		Cache:  config.CacheConfig{TTL: time.Minute, Size: 10},
	}

	a, err := newAssembler(cfg)
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestRunServerShutsDownOnCancel(t *testing.T) {
	srv := &http.Server{
		Addr:    "127.0.0.1:0",
		Handler: http.NotFoundHandler(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx, srv) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	assert.ErrorIs(t, srv.ListenAndServe(), http.ErrServerClosed)
}
