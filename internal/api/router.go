package api

import (
	"context"
	"time"

	authHandler "meal-planner/internal/api/handlers/auth"
	"meal-planner/internal/api/handlers/creators"
	"meal-planner/internal/api/handlers/health"
	"meal-planner/internal/api/handlers/ingredients"
	"meal-planner/internal/api/handlers/mealplans"
	"meal-planner/internal/api/handlers/recipes"
	"meal-planner/internal/api/middleware"
	"meal-planner/internal/core/ai"
	"meal-planner/internal/core/creator"
	"meal-planner/internal/core/ingredient"
	"meal-planner/internal/core/mealplan"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/core/source"
	infraauth "meal-planner/internal/infrastructure/auth"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	requestTimeout = 120 * time.Second
	maxBodySize    = 1 << 20 // 1MB; all payloads here are small JSON
	dedupWindow    = 2 * time.Second
)

// Services bundles everything the router serves. Build it once in main,
// close it on shutdown.
type Services struct {
	AIClient    *ai.Client
	AICache     *ai.ResponseCache
	Sources     []source.Client
	RecipeCache *recipe.Cache
	Collection  *recipe.CollectionService
	Creators    *creator.Store
	Sessions    *ingredient.SessionStore
	Plans       *mealplan.Store
	Auth        *infraauth.Manager
}

// NewServices wires the full service graph from config.
func NewServices(cfg *config.Config) (*Services, error) {
	aiCache, err := ai.NewResponseCache(&cfg.Cache)
	if err != nil {
		return nil, err
	}

	aiClient := ai.NewClient(cfg, aiCache)

	var sources []source.Client
	if cfg.YouTube.Enabled {
		sources = append(sources, source.NewYouTubeClient(&cfg.YouTube))
	}
	if cfg.Instagram.Enabled {
		sources = append(sources, source.NewInstagramClient(&cfg.Instagram))
	}

	recipeCache := recipe.NewCache(time.Duration(cfg.Cache.RecipeTTLDays) * 24 * time.Hour)
	creatorStore := creator.NewStore()

	collection := recipe.NewCollectionService(
		&cfg.Collection,
		recipe.NewQueryGenerator(aiClient),
		recipe.NewDescriptionParser(aiClient),
		recipe.NewMatcher(aiClient),
		creatorStore,
		recipeCache,
		sources,
	)

	return &Services{
		AIClient:    aiClient,
		AICache:     aiCache,
		Sources:     sources,
		RecipeCache: recipeCache,
		Collection:  collection,
		Creators:    creatorStore,
		Sessions:    ingredient.NewSessionStore(),
		Plans:       mealplan.NewStore(),
		Auth:        infraauth.NewManager(&cfg.Auth),
	}, nil
}

// Close releases external connections.
func (s *Services) Close() {
	for _, src := range s.Sources {
		if err := src.Close(); err != nil {
			common.LogWarn("source close failed", zap.Error(err))
		}
	}
	if err := s.AIClient.Close(); err != nil {
		common.LogWarn("AI client close failed", zap.Error(err))
	}
	if s.AICache != nil {
		if err := s.AICache.Close(); err != nil {
			common.LogWarn("AI cache close failed", zap.Error(err))
		}
	}
}

// SetupRouter builds the gin engine with all middleware and routes.
func SetupRouter(cfg *config.Config, svc *Services) *gin.Engine {
	common.LogInfo("starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Int("sources", len(svc.Sources)),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(timeoutMiddleware(requestTimeout))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	router.GET("/health", health.HealthCheck(cfg))
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	authH := authHandler.NewHandler(svc.Auth)
	recipesH := recipes.NewHandler(svc.Collection, svc.RecipeCache)
	ingredientsH := ingredients.NewHandler(ingredient.NewParser(svc.AIClient), svc.Sessions)
	creatorsH := creators.NewHandler(svc.Creators)
	plansH := mealplans.NewHandler(
		svc.Collection,
		mealplan.NewGenerator(svc.AIClient),
		mealplan.NewRefinementAgent(svc.AIClient),
		svc.Plans,
		svc.RecipeCache,
	)

	requireAuth := middleware.Auth(svc.Auth)

	api := router.Group("/api")
	{
		api.POST("/auth/token", authH.Token)

		// Internal routes trust the caller-provided user ID; they exist
		// for service-to-service use and local testing.
		internal := api.Group("/internal")
		{
			internal.POST("/recipes/search", middleware.Deduplication(dedupWindow), recipesH.Search)
			internal.GET("/recipes/:id", recipesH.Get)
		}

		authed := api.Group("", requireAuth)
		{
			authed.POST("/recipes/search/stream", recipesH.StreamSearch)

			ing := authed.Group("/ingredients")
			{
				ing.POST("/parse", ingredientsH.Parse)
				ing.GET("/sessions/latest", ingredientsH.Latest)
				ing.GET("/sessions/:id", ingredientsH.GetSession)
				ing.POST("/sessions/:id/items", ingredientsH.AddItem)
				ing.DELETE("/sessions/:id/items/:name", ingredientsH.RemoveItem)
				ing.PUT("/sessions/:id/items/:name/status", ingredientsH.UpdateStatus)
			}

			cr := authed.Group("/creators")
			{
				cr.GET("", creatorsH.List)
				cr.POST("", creatorsH.Create)
				cr.DELETE("/:id", creatorsH.Delete)
			}

			mp := authed.Group("/meal-plans")
			{
				mp.POST("", middleware.Deduplication(dedupWindow), plansH.Generate)
				mp.GET("/latest", plansH.Latest)
				mp.GET("/:id", plansH.Get)
				mp.POST("/:id/refine", plansH.Refine)
			}
		}
	}

	common.LogInfo("router setup completed",
		zap.String("environment", cfg.App.Env),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
	)
	return router
}

// timeoutMiddleware bounds each request's context. Streaming responses
// inherit the same ceiling, which comfortably covers a full pipeline run.
func timeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
