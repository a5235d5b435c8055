package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knxcore/knxcore/internal/infrastructure/config"
	"github.com/knxcore/knxcore/internal/infrastructure/logging"
	"github.com/knxcore/knxcore/internal/knx/image"
	"github.com/knxcore/knxcore/internal/recorder"
)

const testSchema = `
CREATE TABLE decode_sessions (id TEXT PRIMARY KEY, started_at INTEGER NOT NULL, profile TEXT NOT NULL, sample_rate INTEGER NOT NULL);
CREATE TABLE build_results (program_id TEXT PRIMARY KEY, base_address INTEGER NOT NULL, image_size INTEGER NOT NULL, group_address_count INTEGER NOT NULL, association_count INTEGER NOT NULL, com_object_count INTEGER NOT NULL, content_hash TEXT NOT NULL, built_at INTEGER NOT NULL);
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	_, err = db.Exec(testSchema)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // test cleanup

	store := recorder.NewStore(db)

	s, err := New(Deps{
		Config:  config.APIConfig{Host: "127.0.0.1", Port: 0},
		WS:      config.WebSocketConfig{MaxMessageSize: 8192, PingInterval: 30, PongTimeout: 10},
		Logger:  logging.Default(),
		Store:   store,
		Version: "test",
	})
	require.NoError(t, err)
	s.hub = NewHub(s.wsCfg, s.logger)
	return s
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()

	s.buildRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestHandleGetBuild_NotFound(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/build/missing-program", nil)
	w := httptest.NewRecorder()

	s.buildRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGetBuild_Found(t *testing.T) {
	s := newTestServer(t)
	err := s.store.RecordBuild(t.Context(), "prog-1", image.Summary{
		BaseAddress:       0x4000,
		ImageSize:         256,
		GroupAddressCount: 2,
		AssociationCount:  1,
		ComObjectCount:    1,
		ContentHash:       "abc123",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/build/prog-1", nil)
	w := httptest.NewRecorder()
	s.buildRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "prog-1", body["program_id"])
	assert.Equal(t, "abc123", body["content_hash"])
}

func TestHandleListSessions_Empty(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/decode/sessions", nil)
	w := httptest.NewRecorder()

	s.buildRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["count"])
}

func TestHandleListSessions_InvalidLimit(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/decode/sessions?limit=not-a-number", nil)
	w := httptest.NewRecorder()

	s.buildRouter().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBroadcast_NoopWithoutHub(t *testing.T) {
	s := newTestServer(t)
	s.hub = nil
	// Must not panic when no WebSocket clients have connected.
	s.Broadcast("decode.span", map[string]any{"kind": "databyte"})
}
