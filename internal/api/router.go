package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/exobase-inc/exo-api/internal/api/handler"
	custommiddleware "github.com/exobase-inc/exo-api/internal/api/middleware"
	"github.com/exobase-inc/exo-api/internal/builder"
	"github.com/exobase-inc/exo-api/internal/config"
	"github.com/exobase-inc/exo-api/internal/migration"
	"github.com/exobase-inc/exo-api/internal/repository/mongo"
	"github.com/exobase-inc/exo-api/internal/repository/redis"
	"github.com/exobase-inc/exo-api/internal/security"
	"github.com/exobase-inc/exo-api/internal/service"
)

// NewRouter wires repositories, services and handlers into the HTTP
// router.
func NewRouter(cfg *config.Config, db *mongo.DB, redisClient *redis.Client, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Security components
	tokens := security.NewTokenManager(
		cfg.Auth.TokenSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.PlatformTokenTTL,
	)

	// Persistence
	engine := migration.NewEngine(migration.Default())
	store := mongo.NewStore(db)
	workspaceRepo := mongo.NewWorkspaceRepository(store, engine, log)

	viewCache := redis.NewWorkspaceViewCache(redisClient)
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)

	builderClient := builder.NewClient(cfg.Builder, log)

	// Services
	workspaceService := service.NewWorkspaceService(workspaceRepo, viewCache, log)
	platformService := service.NewPlatformService(workspaceRepo, viewCache, log)
	unitService := service.NewUnitService(workspaceRepo, viewCache, log)
	deploymentService := service.NewDeploymentService(workspaceRepo, viewCache, builderClient, tokens, log)

	// Handlers
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	platformHandler := handler.NewPlatformHandler(platformService)
	unitHandler := handler.NewUnitHandler(unitService)
	deploymentHandler := handler.NewDeploymentHandler(deploymentService)

	// Auth middleware
	authMiddleware := custommiddleware.NewAuthMiddleware(tokens)
	rateLimitMiddleware := custommiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// User routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.AuthenticateUser)
			r.Use(rateLimitMiddleware.Limit)

			r.Route("/workspaces", func(r chi.Router) {
				r.Get("/", workspaceHandler.List)
				r.Post("/", workspaceHandler.Create)

				r.Route("/{workspaceID}", func(r chi.Router) {
					r.Get("/", workspaceHandler.Get)
					r.Post("/members", workspaceHandler.AddMember)
					r.Post("/platforms", platformHandler.Create)
				})
			})

			r.Route("/platforms/{platformID}", func(r chi.Router) {
				r.Get("/", platformHandler.Get)
				r.Put("/provider", platformHandler.UpdateProvider)
				r.Post("/sources", platformHandler.AddSource)

				r.Route("/units", func(r chi.Router) {
					r.Post("/", unitHandler.Create)

					r.Route("/{unitID}", func(r chi.Router) {
						r.Get("/", unitHandler.Get)
						r.Patch("/config", unitHandler.UpdateConfig)
						r.Delete("/", unitHandler.Delete)

						r.Route("/deployments", func(r chi.Router) {
							r.Get("/", deploymentHandler.List)
							r.Post("/", deploymentHandler.Deploy)
							r.Post("/{deploymentID}/cancel", deploymentHandler.Cancel)
						})
					})
				})
			})
		})

		// Builder callbacks, authenticated by platform tokens
		r.Route("/builder/platforms/{platformID}/units/{unitID}/deployments/{deploymentID}", func(r chi.Router) {
			r.With(authMiddleware.AuthenticatePlatform(security.ScopeDeploymentUpdate)).
				Post("/status", deploymentHandler.UpdateStatus)
			r.With(authMiddleware.AuthenticatePlatform(security.ScopeDeploymentUpdate)).
				Post("/output", deploymentHandler.RecordOutput)
			r.With(authMiddleware.AuthenticatePlatform(security.ScopeDeploymentUpdate)).
				Get("/context", deploymentHandler.GetContext)
		})
	})

	return r
}
