package diagnostics

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"placeprep_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/postgrest-go"
)

func TestReport(t *testing.T) {
	r := &Report{}
	r.add("config", StatusOK, "configs/config.yaml")
	r.add("redis", StatusWarn, "down")
	assert.False(t, r.Failed())

	r.add("tables", StatusFail, "missing %s", "users")
	assert.True(t, r.Failed())

	var buf bytes.Buffer
	r.Print(&buf)
	assert.Equal(t,
		"[OK  ] config  configs/config.yaml\n"+
			"[WARN] redis   down\n"+
			"[FAIL] tables  missing users\n",
		buf.String())
}

func lastCheck(r *Report) Check {
	return r.Checks[len(r.Checks)-1]
}

func TestCheckProvider(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Quiz: config.QuizConfig{GenerationEnabled: true}}

	r := &Report{}
	cfg.AI = config.AIConfig{Provider: "openai"}
	CheckProvider(ctx, r, cfg, Options{})
	assert.Equal(t, StatusWarn, lastCheck(r).Status)

	cfg.AI = config.AIConfig{Provider: "carrier-pigeon", APIKey: "k"}
	CheckProvider(ctx, r, cfg, Options{})
	assert.Equal(t, StatusFail, lastCheck(r).Status)

	cfg.AI = config.AIConfig{Provider: "mock"}
	CheckProvider(ctx, r, cfg, Options{})
	assert.Equal(t, StatusOK, lastCheck(r).Status)
	assert.Contains(t, lastCheck(r).Detail, "--live")

	// 空的 mock 队列总是返回不可用
	CheckProvider(ctx, r, cfg, Options{Live: true})
	assert.Equal(t, StatusFail, lastCheck(r).Status)
	assert.Contains(t, lastCheck(r).Detail, "unavailable")

	cfg.Quiz.GenerationEnabled = false
	CheckProvider(ctx, r, cfg, Options{Live: true})
	assert.Equal(t, StatusWarn, lastCheck(r).Status)
}

func TestProbeTables(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		seen = append(seen, req.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Range", "*/0")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := postgrest.NewClient(srv.URL, "public", map[string]string{})
	r := &Report{}
	ProbeTables(r, client, []string{"users", "quiz_scores"})

	require.Len(t, r.Checks, 1)
	assert.Equal(t, StatusOK, r.Checks[0].Status)
	require.Len(t, seen, 2)
	assert.Contains(t, seen[0], "users")
	assert.Contains(t, seen[1], "quiz_scores")
}

func TestProbeTables_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := &Report{}
	ProbeTables(r, postgrest.NewClient(url, "public", map[string]string{}), []string{"users"})
	assert.Equal(t, StatusFail, r.Checks[0].Status)
	assert.Contains(t, r.Checks[0].Detail, "users")
}
