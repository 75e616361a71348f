package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/sonic57/internal/models"
	"github.com/desertthunder/sonic57/internal/repositories"
	"github.com/desertthunder/sonic57/internal/shared"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testAPI struct {
	router *gin.Engine
	repo   *repositories.TrackRepository
	close  func() error
}

func setupAPI(t *testing.T, mutate func(*Options)) *testAPI {
	t.Helper()

	db, err := shared.OpenDatabase(context.Background(), shared.DatabaseConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := repositories.NewTrackRepository(db)
	opts := Options{Tracks: repo, Logger: shared.NewLogger(io.Discard)}
	if mutate != nil {
		mutate(&opts)
	}
	return &testAPI{router: NewRouter(opts), repo: repo, close: db.Close}
}

func (a *testAPI) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRoot(t *testing.T) {
	api := setupAPI(t, nil)
	w := api.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sonic-57 API Core Online", w.Body.String())
}

func TestTracks(t *testing.T) {
	t.Run("empty catalog lists as empty array", func(t *testing.T) {
		api := setupAPI(t, nil)
		w := api.do(http.MethodGet, "/api/tracks", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, "[]", w.Body.String())
	})

	t.Run("create applies defaults", func(t *testing.T) {
		api := setupAPI(t, nil)
		w := api.do(http.MethodPost, "/api/tracks", `{"title":"T","artist":"A","audioUrl":"https://a/x.mp3"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var raw map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		assert.Equal(t, "https://a/x.mp3", raw["audio_src"])
		assert.Equal(t, "", raw["album"])
		assert.Equal(t, "", raw["cover"])
		assert.Equal(t, "", raw["duration"])
		assert.Equal(t, "Unknown", raw["genre"])
		assert.NotZero(t, raw["id"])
	})

	t.Run("list is newest first", func(t *testing.T) {
		api := setupAPI(t, nil)
		for _, title := range []string{"first", "second", "third"} {
			w := api.do(http.MethodPost, "/api/tracks", fmt.Sprintf(`{"title":%q,"artist":"A"}`, title))
			require.Equal(t, http.StatusCreated, w.Code)
		}

		rows := decode[[]models.TrackRow](t, api.do(http.MethodGet, "/api/tracks", ""))
		require.Len(t, rows, 3)
		assert.Equal(t, "third", rows[0].Title)
		assert.Equal(t, "first", rows[2].Title)
		assert.Greater(t, rows[0].ID, rows[1].ID)
	})

	t.Run("missing fields reports what was received", func(t *testing.T) {
		api := setupAPI(t, nil)
		w := api.do(http.MethodPost, "/api/tracks", `{"artist":"A","album":"B"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		body := decode[models.ErrorResponse](t, w)
		assert.Equal(t, "Missing required fields", body.Error)
		assert.Equal(t, map[string]bool{"title": false, "artist": true, "album": true}, body.Received)

		count, err := api.repo.Count(context.Background())
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("malformed body", func(t *testing.T) {
		api := setupAPI(t, nil)
		w := api.do(http.MethodPost, "/api/tracks", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		req := httptest.NewRequest(http.MethodPost, "/api/tracks", nil)
		rec := httptest.NewRecorder()
		api.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("oversized body", func(t *testing.T) {
		api := setupAPI(t, func(o *Options) { o.MaxBodyBytes = 64 })
		big := fmt.Sprintf(`{"title":"T","artist":"A","cover":"%s"}`, strings.Repeat("x", 256))
		w := api.do(http.MethodPost, "/api/tracks", big)
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		api := setupAPI(t, nil)
		created := decode[models.TrackRow](t, api.do(http.MethodPost, "/api/tracks", `{"title":"T","artist":"A"}`))

		for range 2 {
			w := api.do(http.MethodDelete, fmt.Sprintf("/api/tracks/%d", created.ID), "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "Track deleted successfully", decode[models.MessageResponse](t, w).Message)
		}

		rows := decode[[]models.TrackRow](t, api.do(http.MethodGet, "/api/tracks", ""))
		assert.Empty(t, rows)

		w := api.do(http.MethodDelete, "/api/tracks/999", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("delete rejects non-numeric id", func(t *testing.T) {
		api := setupAPI(t, nil)
		w := api.do(http.MethodDelete, "/api/tracks/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage failure is a 500", func(t *testing.T) {
		api := setupAPI(t, nil)
		require.NoError(t, api.close())

		w := api.do(http.MethodGet, "/api/tracks", "")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Server error", decode[models.ErrorResponse](t, w).Error)
	})
}

func TestSeed(t *testing.T) {
	api := setupAPI(t, nil)

	w := api.do(http.MethodPost, "/api/seed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Database seeded successfully", decode[models.MessageResponse](t, w).Message)

	rows := decode[[]models.TrackRow](t, api.do(http.MethodGet, "/api/tracks", ""))
	require.Len(t, rows, 10)
	assert.Equal(t, "WHITE NOISE", rows[0].Title)
	assert.Equal(t, "SILVER VOID", rows[9].Title)

	w = api.do(http.MethodPost, "/api/seed", "")
	require.Equal(t, http.StatusOK, w.Code)
	msg := decode[models.MessageResponse](t, w)
	assert.Equal(t, "Database already seeded", msg.Message)
	assert.Equal(t, 10, msg.Count)

	rows = decode[[]models.TrackRow](t, api.do(http.MethodGet, "/api/tracks", ""))
	assert.Len(t, rows, 10)
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		api := setupAPI(t, nil)
		w := api.do(http.MethodGet, "/api/health", "")
		require.Equal(t, http.StatusOK, w.Code)

		h := decode[models.HealthResponse](t, w)
		assert.Equal(t, "SUCCESS", h.Status)
		assert.Equal(t, "Database connection successful!", h.Message)
		assert.NotEmpty(t, h.SQLiteVersion)
		_, err := time.Parse(time.RFC3339, h.ServerTime)
		assert.NoError(t, err)
	})

	t.Run("unreachable database", func(t *testing.T) {
		api := setupAPI(t, nil)
		require.NoError(t, api.close())

		w := api.do(http.MethodGet, "/api/health", "")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		h := decode[models.HealthResponse](t, w)
		assert.Equal(t, "ERROR", h.Status)
		assert.NotEmpty(t, h.ErrorDetail)
	})
}

func TestMiddleware(t *testing.T) {
	t.Run("cors allows any origin", func(t *testing.T) {
		api := setupAPI(t, nil)
		w := api.do(http.MethodGet, "/api/tracks", "", "Origin", "https://elsewhere.example")
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

		w = api.do(http.MethodOptions, "/api/tracks", "",
			"Origin", "https://elsewhere.example",
			"Access-Control-Request-Method", "POST")
		assert.Less(t, w.Code, 300)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	})

	t.Run("request id is echoed or generated", func(t *testing.T) {
		api := setupAPI(t, nil)
		w := api.do(http.MethodGet, "/", "", "X-Request-ID", "abc-123")
		assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

		w = api.do(http.MethodGet, "/", "")
		assert.Len(t, w.Header().Get("X-Request-ID"), 36)
	})

	t.Run("admin token guards writes only", func(t *testing.T) {
		api := setupAPI(t, func(o *Options) { o.AdminToken = "s3cret" })

		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/tracks", "").Code)
		assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/api/tracks", `{"title":"T","artist":"A"}`).Code)
		assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodPost, "/api/seed", "", "Authorization", "Bearer wrong").Code)
		assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodDelete, "/api/tracks/1", "", "Authorization", "s3cret").Code)

		w := api.do(http.MethodPost, "/api/tracks", `{"title":"T","artist":"A"}`, "Authorization", "Bearer s3cret")
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("write rate limit", func(t *testing.T) {
		api := setupAPI(t, func(o *Options) {
			o.WriteRate = 0.001
			o.WriteBurst = 2
		})

		codes := []int{}
		for range 3 {
			codes = append(codes, api.do(http.MethodPost, "/api/tracks", `{"title":"T","artist":"A"}`).Code)
		}
		assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
		assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/tracks", "").Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		api := setupAPI(t, nil)
		assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/api/nope", "").Code)
	})
}

func TestServerServe(t *testing.T) {
	api := setupAPI(t, nil)
	srv := New(shared.ServerConfig{Host: "127.0.0.1"}, api.router, shared.NewLogger(io.Discard))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Post("http://"+ln.Addr().String()+"/api/tracks", "application/json", bytes.NewBufferString(`{"title":"T","artist":"A"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
