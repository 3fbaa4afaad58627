package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nabii/internal/config"
	"nabii/pkg/contracts/domain"
)

func newTestApp(t *testing.T) (*Application, string, string) {
	t.Helper()
	outDir := t.TempDir()
	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>dashboard</html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, domain.DocumentSankey.FileName()), []byte(`{"nodes":[],"links":[]}`), 0644))

	cfg := config.Default()
	cfg.Output.Dir = outDir
	cfg.Server.StaticDir = staticDir
	cfg.Server.Port = 0
	cfg.Server.OpenBrowser = false
	cfg.RateLimit.Enabled = false

	a, err := NewApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.OTelProviders.Shutdown(context.Background()) })
	return a, outDir, staticDir
}

func TestRoutes(t *testing.T) {
	a, _, _ := newTestApp(t)

	tests := []struct {
		name         string
		path         string
		wantStatus   int
		wantContains string
	}{
		{name: "health", path: "/api/health", wantStatus: http.StatusOK, wantContains: `"status":"ok"`},
		{name: "document list", path: "/api/documents", wantStatus: http.StatusOK, wantContains: `"sankey"`},
		{name: "document api", path: "/api/documents/sankey", wantStatus: http.StatusOK, wantContains: `"nodes"`},
		{name: "missing document api", path: "/api/documents/sdg", wantStatus: http.StatusNotFound},
		{name: "data prefix", path: "/data/sankey_data.json", wantStatus: http.StatusOK, wantContains: `"links"`},
		{name: "root document", path: "/sankey_data.json", wantStatus: http.StatusOK, wantContains: `"links"`},
		{name: "root missing document", path: "/sdg_data.json", wantStatus: http.StatusNotFound},
		{name: "static page", path: "/", wantStatus: http.StatusOK, wantContains: "dashboard"},
		{name: "metrics", path: config.MetricsEndpoint, wantStatus: http.StatusOK, wantContains: "go_goroutines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantContains != "" {
				assert.Contains(t, rec.Body.String(), tt.wantContains)
			}
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestStartStop(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, a.Start(ctx, cancel))

	resp, err := http.Get(a.URL() + config.HealthEndpoint)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, a.Stop(context.Background()))
	assert.NoError(t, ctx.Err(), "a clean shutdown does not cancel")
}

func TestBrowserOpenMethods(t *testing.T) {
	methods := browserOpenMethods("http://localhost:8000")
	require.NotEmpty(t, methods)
	for _, m := range methods {
		assert.Contains(t, m.args, "http://localhost:8000")
	}
}

func TestMissingStaticDir(t *testing.T) {
	cfg := config.Default()
	cfg.Output.Dir = t.TempDir()
	cfg.Server.StaticDir = filepath.Join(t.TempDir(), "absent")
	cfg.Server.OpenBrowser = false

	a, err := NewApplication(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.OTelProviders.Shutdown(context.Background()) })

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, config.HealthEndpoint, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
