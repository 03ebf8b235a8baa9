package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/votable/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 監視
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
	StatusRecorder middleware.HTTPStatusRecorder

	// ドメインサービス
	UserService   UserServiceInterface
	EntityService EntityServiceInterface
	VoteService   VoteServiceInterface
	StatsService  StatsServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → SecurityHeaders → CORS → Identity → Logging → Metrics → RateLimit(General)
//
// /health と /metrics はレート制限の外に配置する。
// 投票登録にはGeneralに加えて投票専用のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(chimw.RequestID)
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewIdentityMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.StatusRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.StatusRecorder))
	}

	userHandler := NewUserHandler(deps.UserService)
	entityHandler := NewEntityHandler(deps.EntityService)
	voteHandler := NewVoteHandler(deps.VoteService)
	statsHandler := NewStatsHandler(deps.StatsService)
	healthHandler := NewHealthHandler(deps.HealthChecker)

	// --- 監視用ルート ---
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- API ---
	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// ユーザー
		r.Route("/api/users", func(r chi.Router) {
			r.Post("/", userHandler.CreateUser)
			r.Get("/{id}", userHandler.GetUser)
		})

		// エンティティ
		r.Route("/api/entities", func(r chi.Router) {
			r.Get("/", entityHandler.ListEntities)
			r.Post("/", entityHandler.CreateEntity)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", entityHandler.GetEntity)
				r.Get("/votables", entityHandler.ListVotables)
				r.Post("/votables", entityHandler.CreateVotables)
				r.Get("/votes", entityHandler.ListVotesForUser)
				r.Get("/stats", statsHandler.GetStats)
			})
		})

		// 投票
		r.Route("/api/votables/{id}", func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.With(deps.RateLimiter.VoteMiddleware()).Post("/votes", voteHandler.SubmitVote)
				return
			}
			r.Post("/votes", voteHandler.SubmitVote)
		})
	})

	return r
}
