package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/votable/internal/entity"
	"github.com/hitoshi/votable/internal/metrics"
	"github.com/hitoshi/votable/internal/middleware"
	"github.com/hitoshi/votable/internal/model"
)

// newTestRouterDeps はモックサービスで構成したRouterDepsを返す。
func newTestRouterDeps() *RouterDeps {
	return &RouterDeps{
		CORSAllowedOrigin: "http://localhost:3000",
		HealthChecker:     &mockHealthChecker{},
		UserService: &mockUserService{
			createUserFn: func(ctx context.Context, email, name string) (*model.User, error) {
				return &model.User{ID: "user-1", Email: email, Name: name}, nil
			},
			getUserFn: func(ctx context.Context, id string) (*model.User, error) {
				return &model.User{ID: id}, nil
			},
		},
		EntityService: &mockEntityService{
			createEntityFn: func(ctx context.Context, input entity.CreateEntityInput) (*model.EntityWithDetails, error) {
				return &model.EntityWithDetails{Entity: model.Entity{ID: "e1", Type: input.Type, Title: input.Title}}, nil
			},
			getEntityFn: func(ctx context.Context, entityID string) (*model.EntityWithDetails, error) {
				return &model.EntityWithDetails{Entity: model.Entity{ID: entityID}}, nil
			},
		},
		VoteService:  &mockVoteService{},
		StatsService: &mockStatsService{},
	}
}

func serve(router http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNewRouter_RoutesToHandlers(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"ヘルスチェック", http.MethodGet, "/health", "", http.StatusOK},
		{"ユーザー作成", http.MethodPost, "/api/users", `{"email":"a@x.io","name":"A"}`, http.StatusOK},
		{"ユーザー取得", http.MethodGet, "/api/users/user-1", "", http.StatusOK},
		{"エンティティ一覧", http.MethodGet, "/api/entities", "", http.StatusOK},
		{"エンティティ作成", http.MethodPost, "/api/entities", `{"type":"text","title":"T","userId":"u"}`, http.StatusCreated},
		{"エンティティ取得", http.MethodGet, "/api/entities/e1", "", http.StatusOK},
		{"投票項目追加", http.MethodPost, "/api/entities/e1/votables", `{"votables":[]}`, http.StatusCreated},
		{"投票項目一覧", http.MethodGet, "/api/entities/e1/votables?userId=u", "", http.StatusOK},
		{"ユーザーの投票", http.MethodGet, "/api/entities/e1/votes?userId=u", "", http.StatusOK},
		{"集計", http.MethodGet, "/api/entities/e1/stats", "", http.StatusOK},
		{"投票", http.MethodPost, "/api/votables/v1/votes", `{"userId":"u","value":3}`, http.StatusOK},
		{"未定義のルート", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
		{"未対応のメソッド", http.MethodDelete, "/api/entities/e1", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.method, tt.path, tt.body, nil)
			if w.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d (body=%s)", tt.method, tt.path, w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestNewRouter_CreateEntity_PassesHeaderUserID(t *testing.T) {
	deps := newTestRouterDeps()
	var gotUserID string
	deps.EntityService = &mockEntityService{
		createEntityFn: func(ctx context.Context, input entity.CreateEntityInput) (*model.EntityWithDetails, error) {
			gotUserID = input.UserID
			return &model.EntityWithDetails{Entity: model.Entity{ID: "e1"}}, nil
		},
	}
	router := NewRouter(deps)

	w := serve(router, http.MethodPost, "/api/entities", `{"type":"text","title":"T"}`,
		map[string]string{middleware.UserIDHeader: "header-user"})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	if gotUserID != "header-user" {
		t.Errorf("userID = %q, want header-user", gotUserID)
	}
}

func TestNewRouter_AppliesSecurityAndCORSHeaders(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	w := serve(router, http.MethodGet, "/api/entities", "", map[string]string{"Origin": "http://localhost:3000"})

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestNewRouter_PreflightReturnsNoContent(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	w := serve(router, http.MethodOptions, "/api/votables/v1/votes", "", map[string]string{
		"Origin":                        "http://localhost:3000",
		"Access-Control-Request-Method": "POST",
	})

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestNewRouter_RecoversFromPanic(t *testing.T) {
	deps := newTestRouterDeps()
	deps.StatsService = &mockStatsService{
		computeStatsFn: func(ctx context.Context, entityID string) (*model.EntityStats, error) {
			panic("boom")
		},
	}
	router := NewRouter(deps)

	w := serve(router, http.MethodGet, "/api/entities/e1/stats", "", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

func TestNewRouter_VoteRateLimit(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     100,
		GeneralBurst:    100,
		VoteRate:        0.001,
		VoteBurst:       1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	deps := newTestRouterDeps()
	deps.RateLimiter = rl
	router := NewRouter(deps)

	headers := map[string]string{middleware.UserIDHeader: "voter-1"}
	body := `{"userId":"voter-1","value":"1"}`

	if w := serve(router, http.MethodPost, "/api/votables/v1/votes", body, headers); w.Code != http.StatusOK {
		t.Fatalf("first vote status = %d, want %d", w.Code, http.StatusOK)
	}

	w := serve(router, http.MethodPost, "/api/votables/v1/votes", body, headers)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second vote status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header should be set")
	}

	// 投票専用の制限は他のAPIに影響しない
	if w := serve(router, http.MethodGet, "/api/entities", "", headers); w.Code != http.StatusOK {
		t.Errorf("GET /api/entities status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestNewRouter_HealthIsNotRateLimited(t *testing.T) {
	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     0.001,
		GeneralBurst:    1,
		VoteRate:        0.001,
		VoteBurst:       1,
		CleanupInterval: time.Minute,
	})
	defer rl.Stop()

	deps := newTestRouterDeps()
	deps.RateLimiter = rl
	router := NewRouter(deps)

	for i := 0; i < 3; i++ {
		if w := serve(router, http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, w.Code, http.StatusOK)
		}
	}
}

func TestNewRouter_MetricsEndpointAndStatusCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	deps := newTestRouterDeps()
	deps.StatusRecorder = collector
	deps.MetricsHandler = metrics.Handler(reg)
	router := NewRouter(deps)

	serve(router, http.MethodGet, "/api/entities", "", nil)

	w := serve(router, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `votable_http_status_total{status_code="200"}`) {
		t.Errorf("metrics output missing http status counter:\n%s", w.Body.String())
	}
}

func TestNewRouter_WithoutMetricsHandler_MetricsNotMounted(t *testing.T) {
	router := NewRouter(newTestRouterDeps())

	w := serve(router, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
