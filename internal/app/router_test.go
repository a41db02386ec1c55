package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"placeprep_backend/internal/config"
	"placeprep_backend/internal/controller"
	"placeprep_backend/internal/model"
	"placeprep_backend/internal/util"
	"placeprep_backend/pkg/diagnostics"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routerSecret = "router-secret"

type noopActivity struct{}

func (noopActivity) TouchSeen(uint, time.Time) error { return nil }

// newTestRouter 只注入管理员控制器，其余处理函数不会被调用
func newTestRouter(diagnose func() *diagnostics.Report) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: routerSecret}}
	ctrls := &controllers{
		admin: &controller.AdminController{
			Config: cfg,
			Diagnose: func(context.Context, *config.Config, diagnostics.Options) *diagnostics.Report {
				return diagnose()
			},
		},
	}
	r := gin.New()
	(&App{}).registerRoutes(r, ctrls, cfg, nil, noopActivity{})
	return r
}

func bearer(t *testing.T, role model.UserRole) string {
	t.Helper()
	u := &model.User{Email: "u@x.io", Role: role}
	u.ID = 9
	tok, _, err := util.GenerateJWT(u, routerSecret, time.Hour)
	require.NoError(t, err)
	return tok
}

func TestAdminDiagnosticsRequiresAdmin(t *testing.T) {
	calls := 0
	r := newTestRouter(func() *diagnostics.Report {
		calls++
		return &diagnostics.Report{Checks: []diagnostics.Check{{Name: "config", Status: diagnostics.StatusOK}}}
	})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"student", bearer(t, model.Student), http.StatusForbidden},
		{"admin", bearer(t, model.Admin), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/diagnostics", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, 1, calls)
}

func TestAdminDiagnosticsReportsFailure(t *testing.T) {
	r := newTestRouter(func() *diagnostics.Report {
		return &diagnostics.Report{Checks: []diagnostics.Check{
			{Name: "config", Status: diagnostics.StatusOK},
			{Name: "database", Status: diagnostics.StatusFail, Detail: "connection refused"},
		}}
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/diagnostics", nil)
	req.Header.Set("Authorization", "Bearer "+bearer(t, model.Admin))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Healthy bool                `json:"healthy"`
			Checks  []diagnostics.Check `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Healthy)
	assert.Len(t, resp.Data.Checks, 2)
}

func TestRouteTable(t *testing.T) {
	r := newTestRouter(func() *diagnostics.Report { return &diagnostics.Report{} })

	registered := map[string]bool{}
	for _, rt := range r.Routes() {
		registered[rt.Method+" "+rt.Path] = true
	}
	for _, want := range []string{
		"GET /api/health",
		"POST /api/register",
		"POST /api/login",
		"GET /api/catalog/branches",
		"GET /api/catalog/topics",
		"GET /api/catalog/topics/:topic/subtopics",
		"POST /api/logout",
		"GET /api/profile",
		"PUT /api/user/profile",
		"POST /api/quiz/start",
		"GET /api/quiz/active",
		"GET /api/quiz/difficulty",
		"PUT /api/quiz/:id/progress",
		"POST /api/quiz/:id/submit",
		"DELETE /api/quiz/:id",
		"GET /api/scores",
		"GET /api/dashboard",
		"GET /api/suggestions",
		"GET /api/resume",
		"PUT /api/resume",
		"GET /api/resume/download",
		"POST /api/certificates",
		"GET /api/certificates",
		"DELETE /api/certificates/:id",
		"GET /api/admin/diagnostics",
		"GET /metrics",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	r := newTestRouter(func() *diagnostics.Report { return &diagnostics.Report{} })
	for _, target := range []string{"/api/profile", "/api/quiz/active", "/api/dashboard", "/api/certificates"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}
