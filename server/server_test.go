package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/rushteam/gamerec/catalog"
	"github.com/rushteam/gamerec/core"
	"github.com/rushteam/gamerec/engine"
	"github.com/rushteam/gamerec/filter"
)

const poolJSON = `[
	{"id": 1, "name": "Celeste", "genres": [1, 2], "cover": "c1.png"},
	{"id": 2, "name": "Hollow Knight", "genres": [1], "cover": "c2.png"},
	{"id": 3, "name": "Hades", "genres": [3], "cover": "c3.png"}
]`

type stubProvider struct {
	games []*core.Game
	err   error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Candidates(context.Context) ([]*core.Game, error) {
	return p.games, p.err
}

func newTestServer(t *testing.T, provider core.CandidateProvider) http.Handler {
	t.Helper()
	if provider == nil {
		games, _, err := catalog.DecodeGames([]byte(poolJSON))
		if err != nil {
			t.Fatalf("DecodeGames() error = %v", err)
		}
		provider = &stubProvider{games: games}
	}
	eng := engine.New(engine.WithFilters(&filter.ExprFilter{}))
	cfg := DefaultConfig()
	cfg.RateLimit = 0
	return New(eng, provider, cfg).Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeIDs(t *testing.T, body []byte) []int64 {
	t.Helper()
	var games []struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(body, &games); err != nil {
		t.Fatalf("decode response %s: %v", body, err)
	}
	ids := make([]int64, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	return ids
}

func decodeError(t *testing.T, body []byte) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode error response %s: %v", body, err)
	}
	return resp
}

func TestHello(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/hello", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "Hello, World!" {
		t.Errorf("GET /hello = %d %q", rec.Code, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("GET /health = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRecommendReturnsOriginalObjects(t *testing.T) {
	h := newTestServer(t, nil)
	for _, method := range []string{http.MethodPost, http.MethodGet} {
		t.Run(method, func(t *testing.T) {
			rec := do(t, h, method, "/recommend", `{"user":{"id":"u1","liked":[1]}}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if got, want := decodeIDs(t, rec.Body.Bytes()), []int64{2, 3}; !reflect.DeepEqual(got, want) {
				t.Errorf("ids = %v, want %v", got, want)
			}
			if !strings.Contains(rec.Body.String(), `"cover": "c2.png"`) && !strings.Contains(rec.Body.String(), `"cover":"c2.png"`) {
				t.Errorf("response lost upstream fields: %s", rec.Body.String())
			}
		})
	}
}

func TestRecommendLikedAsObjectsAndNumericUserID(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodPost, "/recommend",
		`{"user":{"id":42,"liked":[{"id":1,"name":"Celeste"}]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got, want := decodeIDs(t, rec.Body.Bytes()), []int64{2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

func TestRecommendLimitAndFilter(t *testing.T) {
	h := newTestServer(t, nil)
	tests := []struct {
		name string
		body string
		want []int64
	}{
		{name: "limit", body: `{"user":{"id":"u","liked":[1]},"limit":1}`, want: []int64{2}},
		{name: "filter", body: `{"user":{"id":"u","liked":[1]},"filter":"game.id != 2"}`, want: []int64{3}},
		{name: "filter on genres", body: `{"user":{"id":"u","liked":[1]},"filter":"1 in game.genres"}`, want: []int64{2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/recommend", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if got := decodeIDs(t, rec.Body.Bytes()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecommendAllFilteredReturnsEmptyArray(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodPost, "/recommend", `{"user":{"id":"u","liked":[1,2,3]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestRecommendBadRequests(t *testing.T) {
	h := newTestServer(t, nil)
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{name: "empty body", body: "", wantCode: codeInvalidInput, wantMsg: msgNoUser},
		{name: "no user", body: `{"limit":3}`, wantCode: codeInvalidInput, wantMsg: msgNoUser},
		{name: "null user", body: `{"user":null}`, wantCode: codeInvalidInput, wantMsg: msgNoUser},
		{name: "user not object", body: `{"user":"bob"}`, wantCode: codeInvalidInput, wantMsg: msgInvalidUser},
		{name: "missing id", body: `{"user":{"liked":[1]}}`, wantCode: codeInvalidInput, wantMsg: msgInvalidUser},
		{name: "missing liked", body: `{"user":{"id":"u"}}`, wantCode: codeInvalidInput, wantMsg: msgInvalidUser},
		{name: "liked without id", body: `{"user":{"id":"u","liked":[{"name":"x"}]}}`, wantCode: codeInvalidInput, wantMsg: msgInvalidUser},
		{name: "invalid json", body: `{"user":`, wantCode: codeInvalidInput, wantMsg: "invalid JSON body"},
		{name: "limit too large", body: `{"user":{"id":"u","liked":[1]},"limit":50}`, wantCode: codeInvalidInput, wantMsg: "limit must be at most 20"},
		{name: "negative limit", body: `{"user":{"id":"u","liked":[1]},"limit":-1}`, wantCode: codeInvalidInput, wantMsg: "limit must be at least 1"},
		{name: "limit not int", body: `{"user":{"id":"u","liked":[1]},"limit":"x"}`, wantCode: codeInvalidInput, wantMsg: "limit must be an integer"},
		{name: "bad filter", body: `{"user":{"id":"u","liked":[1]},"filter":"game.id +"}`, wantCode: codeInvalidFilter},
		{name: "non bool filter", body: `{"user":{"id":"u","liked":[1]},"filter":"1 + 1"}`, wantCode: codeInvalidFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/recommend", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
			}
			resp := decodeError(t, rec.Body.Bytes())
			if resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
			if tt.wantMsg != "" && resp.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", resp.Message, tt.wantMsg)
			}
		})
	}
}

func TestRecommendUnprocessable(t *testing.T) {
	tests := []struct {
		name     string
		pool     []*core.Game
		body     string
		wantCode string
	}{
		{
			name:     "empty liked",
			pool:     []*core.Game{{ID: 1, Genres: []int64{1}}},
			body:     `{"user":{"id":"u","liked":[]}}`,
			wantCode: core.ErrorCodeEmptyLikedSet,
		},
		{
			name:     "liked not in pool",
			pool:     []*core.Game{{ID: 1, Genres: []int64{1}}},
			body:     `{"user":{"id":"u","liked":[9]}}`,
			wantCode: core.ErrorCodeEmptyLikedSet,
		},
		{
			name:     "empty pool",
			pool:     nil,
			body:     `{"user":{"id":"u","liked":[1]}}`,
			wantCode: core.ErrorCodeEmptyCandidatePool,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &stubProvider{games: tt.pool})
			rec := do(t, h, http.MethodPost, "/recommend", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422, body = %s", rec.Code, rec.Body.String())
			}
			if resp := decodeError(t, rec.Body.Bytes()); resp.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestRecommendCatalogErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "breaker open", err: fmt.Errorf("popular: %w", core.ErrCatalogUnavailable), wantStatus: http.StatusServiceUnavailable},
		{name: "upstream", err: fmt.Errorf("%w: status 500", catalog.ErrUpstream), wantStatus: http.StatusBadGateway},
		{name: "timeout", err: context.DeadlineExceeded, wantStatus: http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &stubProvider{err: tt.err})
			rec := do(t, h, http.MethodPost, "/recommend", `{"user":{"id":"u","liked":[1]}}`)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	h := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}

	rec = do(t, h, http.MethodGet, "/hello", "")
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Error("X-Request-ID not generated")
	}
}

func TestNotFound(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if resp := decodeError(t, rec.Body.Bytes()); resp.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", resp.Code)
	}
}

func TestRateLimit(t *testing.T) {
	games, _, _ := catalog.DecodeGames([]byte(poolJSON))
	cfg := DefaultConfig()
	cfg.RateLimit = 1
	h := New(engine.New(), &stubProvider{games: games}, cfg).Router()

	body := `{"user":{"id":"u","liked":[1]}}`
	if rec := do(t, h, http.MethodPost, "/recommend", body); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/recommend", body); rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
}
