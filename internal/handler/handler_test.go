package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/RoGogDBD/profile-views/internal/palette"
	"github.com/RoGogDBD/profile-views/internal/render"
	"github.com/RoGogDBD/profile-views/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

const testDoc = `<svg><rect fill="{{FILL}}"/><text>{{VIEWS}}</text></svg>`

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	pal, err := palette.Load(strings.NewReader("aaa\nbbb\nccc\n"), 100)
	require.NoError(t, err)
	tmpl, err := render.Parse(testDoc)
	require.NoError(t, err)
	return NewHandler(repository.NewMemStorage(), render.NewRenderer(tmpl, pal), nil)
}

// Ключ в цель запроса попадает экранированным: httptest.NewRequest паникует
// на сыром пробеле. Обработчик читает ключ из route context, как chi.
func badgeRequest(key, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/badge/"+url.PathEscape(key)+query, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("key", key)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func countRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/count/"+url.PathEscape(key), nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("key", key)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestHandleBadge_TableDriven(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		wantStatus int
	}{
		{"valid key", "alice", http.StatusOK},
		{"github style key", "octo-cat_42", http.StatusOK},
		{"empty key", "", http.StatusBadRequest},
		{"key with space", "a b", http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			w := httptest.NewRecorder()
			h.HandleBadge(w, badgeRequest(tt.key, ""))

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				require.Equal(t, "image/svg+xml; charset=utf-8", w.Header().Get("Content-Type"))
				require.Equal(t, "max-age=0, no-cache, no-store, must-revalidate", w.Header().Get("Cache-Control"))
				require.Contains(t, w.Body.String(), "<svg")
			}
		})
	}
}

func TestHandleBadge_IncrementsPerRequest(t *testing.T) {
	h := newTestHandler(t)

	first := httptest.NewRecorder()
	h.HandleBadge(first, badgeRequest("alice", ""))
	require.Equal(t, http.StatusOK, first.Code)
	require.Contains(t, first.Body.String(), `>1</tspan>`)

	second := httptest.NewRecorder()
	h.HandleBadge(second, badgeRequest("alice", ""))
	require.Equal(t, http.StatusOK, second.Code)
	require.Contains(t, second.Body.String(), `>2</tspan>`)
}

func TestHandleBadge_FillModeRandomStillCounts(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.HandleBadge(w, badgeRequest("bob", "?fill_mode=random"))
	require.Equal(t, http.StatusOK, w.Code)

	count := httptest.NewRecorder()
	h.HandleGetCount(count, countRequest("bob"))
	require.Equal(t, http.StatusOK, count.Code)
	require.Equal(t, "1", count.Body.String())
}

func TestHandleGetCount_TableDriven(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(h *Handler)
		key        string
		wantStatus int
		wantBody   string
	}{
		{
			name: "existing key",
			setup: func(h *Handler) {
				w := httptest.NewRecorder()
				h.HandleBadge(w, badgeRequest("carol", ""))
			},
			key:        "carol",
			wantStatus: http.StatusOK,
			wantBody:   "1",
		},
		{
			name:       "missing key",
			key:        "nobody",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid key",
			key:        "bad/key",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t)
			if tt.setup != nil {
				tt.setup(h)
			}
			w := httptest.NewRecorder()
			h.HandleGetCount(w, countRequest(tt.key))

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantBody != "" {
				require.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestHandleCountJSON(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.HandleBadge(w, badgeRequest("dave", ""))

	body := bytes.NewBufferString(`{"id":"dave"}`)
	req := httptest.NewRequest(http.MethodPost, "/value", body)
	resp := httptest.NewRecorder()
	h.HandleCountJSON(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "application/json", resp.Header().Get("Content-Type"))

	var rec struct {
		ID    string `json:"id"`
		Views int64  `json:"views"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &rec))
	require.Equal(t, "dave", rec.ID)
	require.Equal(t, int64(1), rec.Views)
}

func TestHandleCountJSON_Errors(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/value", strings.NewReader("{bad"))
	w := httptest.NewRecorder()
	h.HandleCountJSON(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/value", strings.NewReader(`{"id":"ghost"}`))
	w = httptest.NewRecorder()
	h.HandleCountJSON(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleStatsPage(t *testing.T) {
	h := newTestHandler(t)

	for _, key := range []string{"zeta", "alpha"} {
		w := httptest.NewRecorder()
		h.HandleBadge(w, badgeRequest(key, ""))
	}

	w := httptest.NewRecorder()
	h.HandleStatsPage(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "alpha: 1")
	require.Contains(t, body, "zeta: 1")
	// Счётчики отсортированы по ключу.
	require.Less(t, strings.Index(body, "alpha"), strings.Index(body, "zeta"))
}

func TestHandlePing_NoDatabase(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.HandlePing(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleHealth(t *testing.T) {
	h := newTestHandler(t)

	w := httptest.NewRecorder()
	h.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var report map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	require.Contains(t, report, "uptime_seconds")
	require.Contains(t, report, "mem_used_percent")
}
