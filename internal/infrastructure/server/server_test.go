package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chordcraft/core/internal/adapters/repository"
	"github.com/chordcraft/core/internal/infrastructure/config"
	"github.com/chordcraft/core/internal/infrastructure/logger"
)

type testServer struct {
	srv      *Server
	dataPath string
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 8000},
		Storage: config.StorageConfig{Backend: config.StorageJSON, DataPath: filepath.Join(dir, "data", "data.json")},
		Static:  config.StaticConfig{IndexPath: filepath.Join(dir, "index.html")},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: "*",
			RateLimitRequests:  1000,
			RateLimitWindow:    time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
	for _, fn := range mutate {
		fn(cfg)
	}

	log := logger.NewNop()
	srv, err := New(cfg, repository.NewJSONGateway(cfg.Storage.DataPath, log), log)
	require.NoError(t, err)

	return &testServer{srv: srv, dataPath: cfg.Storage.DataPath}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const progressionBody = `{"name": "ii-V-I", "scale": {"key": "C", "mode": "Ionian"}, "chords": [{"root": "D", "quality": "m7", "label": "Dm7"}]}`

const shapeBody = `{"chord": "C", "position": "open", "diagram": {"startFret": 1, "frets": [-1, 3, 2, 0, 1, 0]}}`

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail": "index.html not found"}`, rec.Body.String())

	indexPath := ts.srv.config.Static.IndexPath
	require.NoError(t, os.WriteFile(indexPath, []byte("<html>chords</html>"), 0o644))

	rec = ts.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>chords</html>", rec.Body.String())
}

func TestProgressionLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/progressions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/progressions", progressionBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	id, _ := created["id"].(string)
	require.Regexp(t, `^prg-[0-9a-f]{12}$`, id)
	assert.Nil(t, created["chords"].([]any)[0].(map[string]any)["bass"])

	rec = ts.do(t, http.MethodPut, "/api/progressions/"+id, `{"name": "renamed", "scale": {"key": "F", "mode": "Dorian"}, "chords": []}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[map[string]any](t, rec)
	assert.Equal(t, id, updated["id"])
	assert.Equal(t, "renamed", updated["name"])

	rec = ts.do(t, http.MethodGet, "/api/progressions", "")
	list := decodeBody[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "renamed", list[0]["name"])

	rec = ts.do(t, http.MethodDelete, "/api/progressions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = ts.do(t, http.MethodDelete, "/api/progressions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeBody[map[string]string](t, rec)["detail"], id)
}

func TestShapeLifecycle(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/shapes", `{"id": "shape-mine", "chord": "  ", "diagram": {"startFret": 1, "frets": [0, 2, 2, 1, 0, 0]}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	assert.NotEqual(t, "shape-mine", created["id"])
	assert.Equal(t, "Untitled", created["chord"])
	assert.Nil(t, created["position"])

	id := created["id"].(string)
	rec = ts.do(t, http.MethodPut, "/api/shapes/"+id, shapeBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id": "`+id+`", "chord": "C", "position": "open", "diagram": {"startFret": 1, "frets": [-1, 3, 2, 0, 1, 0]}}`, rec.Body.String())

	rec = ts.do(t, http.MethodPut, "/api/shapes/shape-unknown", shapeBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/shapes/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		detail string
	}{
		{"five frets", http.MethodPost, "/api/shapes", `{"chord": "C", "diagram": {"startFret": 1, "frets": [0, 0, 0, 0, 0]}}`, "diagram.frets"},
		{"start fret zero", http.MethodPost, "/api/shapes", `{"chord": "C", "diagram": {"startFret": 0, "frets": [0, 0, 0, 0, 0, 0]}}`, "diagram.startFret"},
		{"wrong type", http.MethodPost, "/api/shapes", `{"chord": "C", "diagram": {"startFret": "one", "frets": [0, 0, 0, 0, 0, 0]}}`, "diagram.startFret"},
		{"malformed json", http.MethodPost, "/api/progressions", `{"name": `, "invalid JSON"},
		{"empty body", http.MethodPost, "/api/progressions", ``, "request body is required"},
		{"missing scale", http.MethodPost, "/api/progressions", `{"name": "x", "chords": []}`, "scale is required"},
		{"update with bad payload", http.MethodPut, "/api/progressions/prg-x", `{"name": "x"}`, "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			assert.Contains(t, decodeBody[map[string]string](t, rec)["detail"], tt.detail)
		})
	}

	rec := ts.do(t, http.MethodGet, "/api/shapes", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUnsupportedMediaType(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/shapes", strings.NewReader("chord=C"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, decodeBody[map[string]string](t, rec)["detail"], "Unsupported Media Type")
}

func TestRepairsDocumentOnRead(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(ts.dataPath), 0o755))
	require.NoError(t, os.WriteFile(ts.dataPath, []byte(`{"shapes": [
		{"id": "dup", "chord": "A", "diagram": {"startFret": 1, "frets": [0, 0, 2, 2, 2, 0]}},
		{"id": "dup", "chord": "E", "diagram": {"startFret": 1, "frets": [0, 2, 2, 1, 0, 0]}}
	]}`), 0o644))

	rec := ts.do(t, http.MethodGet, "/api/shapes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	shapes := decodeBody[[]map[string]any](t, rec)
	require.Len(t, shapes, 2)
	assert.Equal(t, "dup", shapes[0]["id"])
	assert.NotEqual(t, "dup", shapes[1]["id"])

	raw, err := os.ReadFile(ts.dataPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"progressions": []`)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/api/shapes", "")

	rec := ts.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `chordcraft_document_loads_total{outcome="missing"} 1`)
	assert.Contains(t, rec.Body.String(), `http_requests_total`)
}

func TestMetricsDisabled(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.Metrics.Enabled = false })

	rec := ts.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func preflight(t *testing.T, ts *testServer, origin string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, "/api/shapes", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCORS_AllowsCredentials(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.Security.CORSAllowCredentials = true })

	rec := preflight(t, ts, "https://example.com")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_WithoutCredentials(t *testing.T) {
	ts := newTestServer(t)

	rec := preflight(t, ts, "https://example.com")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.RateLimitRequests = 2
		cfg.Security.RateLimitWindow = time.Hour
	})

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.do(t, http.MethodGet, "/health", "").Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/chords", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail": "Not Found"}`, rec.Body.String())
}
