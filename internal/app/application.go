package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"qrstudio-backend/internal/background"
	"qrstudio-backend/internal/config"
	"qrstudio-backend/internal/handlers"
	"qrstudio-backend/internal/middleware"
	"qrstudio-backend/internal/models"
	"qrstudio-backend/internal/render"
	"qrstudio-backend/internal/repository"
	"qrstudio-backend/internal/seed"
	"qrstudio-backend/internal/service"
	"qrstudio-backend/pkg/cache"
	"qrstudio-backend/pkg/logger"
)

type Application struct {
	cfg *config.Config

	db    *gorm.DB
	cache *cache.Cache

	tasks       *background.Pool
	rateLimiter *middleware.RateLimitManager

	repositories repositoryContainer
	services     serviceContainer
	handlers     handlerContainer

	router *gin.Engine
	server *http.Server
}

type repositoryContainer struct {
	Microsite repository.MicrositeRepository
	Design    repository.DesignRepository
}

type serviceContainer struct {
	QR        *service.QRService
	Render    *service.RenderService
	Microsite *service.MicrositeService
	Design    *service.DesignService
	Upload    *service.UploadService
}

type handlerContainer struct {
	QR        *handlers.QRHandler
	Microsite *handlers.MicrositeHandler
	Design    *handlers.DesignHandler
	Upload    *handlers.UploadHandler
	Viewer    *handlers.ViewerHandler
}

func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	app := &Application{cfg: cfg}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.runMigrations(); err != nil {
		return nil, err
	}

	if err := app.initCache(); err != nil {
		return nil, err
	}

	app.initRepositories()
	app.initServices()

	if cfg.IsDevelopment() {
		seed.EnsureDemoMicrosites(context.Background(), app.services.Microsite)
	}

	if err := app.initHandlers(); err != nil {
		return nil, err
	}

	app.initRouter()

	app.server = &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        app.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return app, nil
}

func (a *Application) Run() error {
	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
		"microsites":  a.cfg.MicrositeBaseURL(),
	})

	return a.server.ListenAndServe()
}

func (a *Application) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return err
		}
	}

	if a.tasks != nil {
		if err := a.tasks.Shutdown(ctx); err != nil {
			logger.Error(err, "Background tasks did not finish", nil)
		}
	}

	if a.rateLimiter != nil {
		_ = a.rateLimiter.Shutdown()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	return nil
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) initDatabase() error {
	var dialector gorm.Dialector
	switch strings.ToLower(a.cfg.DBDriver) {
	case "sqlite":
		logger.Info("Opening SQLite database", map[string]interface{}{"path": a.cfg.SQLitePath})
		dialector = sqlite.Open(a.cfg.SQLitePath)
	case "postgres", "":
		logger.Info("Connecting to database", map[string]interface{}{"host": a.cfg.DBHost, "name": a.cfg.DBName})
		dialector = postgres.Open(a.cfg.DatabaseURL)
	default:
		return fmt.Errorf("unsupported database driver %q", a.cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if strings.EqualFold(a.cfg.DBDriver, "sqlite") {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	a.db = db
	return nil
}

func (a *Application) runMigrations() error {
	if a.db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Running database migrations", nil)

	if err := a.db.AutoMigrate(
		&models.Microsite{},
		&models.Design{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database migration completed", nil)
	return nil
}

func (a *Application) initCache() error {
	c, err := cache.NewCache(a.cfg.RedisURL, a.cfg.EnableRedis && a.cfg.EnableCache)
	if err != nil {
		if a.cfg.IsProduction() {
			return err
		}
		logger.Warn("Redis unavailable, continuing without cache", map[string]interface{}{"error": err.Error()})
		c, _ = cache.NewCache("", false)
	}
	a.cache = c
	return nil
}

func (a *Application) initRepositories() {
	a.repositories = repositoryContainer{
		Microsite: repository.NewMicrositeRepository(a.db),
		Design:    repository.NewDesignRepository(a.db),
	}
}

func (a *Application) initServices() {
	micrositeBase := a.cfg.MicrositeBaseURL()

	qr := service.NewQRService(micrositeBase)
	renderer := service.NewRenderService(
		a.cache,
		render.NewLocalLogoLoader(a.cfg.UploadDir, "/uploads/"),
		a.cfg.RenderCacheTTL,
		a.cfg.MaxRenderWidth,
	)
	tokens := service.NewEditTokens(a.cfg.EditTokenSecret, a.cfg.EditTokenTTL)
	microsites := service.NewMicrositeService(
		a.repositories.Microsite,
		a.cache,
		tokens,
		qr,
		func(slug string) string { return micrositeBase + "/" + slug },
	)

	if a.cache.Enabled() {
		a.tasks = background.NewPool(a.cfg.TaskWorkers, 64)
		a.tasks.Start(context.Background())

		style := models.DefaultVisualOptions()
		style.Width = a.cfg.MicrositeQRWidth
		microsites.UseBackground(a.tasks, renderer, style)
	}

	a.services = serviceContainer{
		QR:        qr,
		Render:    renderer,
		Microsite: microsites,
		Design:    service.NewDesignService(a.repositories.Design, qr),
		Upload:    service.NewUploadService(a.cfg.UploadDir, a.cfg.MaxUploadSize),
	}
}

func (a *Application) initHandlers() error {
	viewer, err := handlers.NewViewerHandler(a.services.QR, a.services.Microsite, a.cfg.ViewerTheme)
	if err != nil {
		return fmt.Errorf("failed to initialize viewer: %w", err)
	}

	a.handlers = handlerContainer{
		QR:        handlers.NewQRHandler(a.services.QR, a.services.Render),
		Microsite: handlers.NewMicrositeHandler(a.services.Microsite),
		Design:    handlers.NewDesignHandler(a.services.Design),
		Upload:    handlers.NewUploadHandler(a.services.Upload),
		Viewer:    viewer,
	}
	return nil
}

func (a *Application) initRouter() {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a.rateLimiter = middleware.NewRateLimitManager(context.Background())

	router := gin.New()
	router.MaxMultipartMemory = a.cfg.MaxUploadSize
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.GinLogger())
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.WithRateLimitManager(a.rateLimiter))
	router.Use(middleware.RateLimitMiddleware(a.cfg))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", handlers.EditTokenHeader, middleware.AdminTokenHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Render-Cache", "X-Logo-Error", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", a.health)

	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	uploads := router.Group("/uploads")
	uploads.Use(middleware.UploadsProtection())
	uploads.Static("/", a.cfg.UploadDir)

	pages := router.Group(normalizedPath(a.cfg.MicrositePath))
	pages.Use(middleware.ViewerHeadersMiddleware())
	{
		pages.GET("", a.handlers.Viewer.ShowToken)
		pages.GET("/:slug", a.handlers.Viewer.ShowStored)
	}

	admin := middleware.AdminTokenMiddleware(a.cfg.AdminToken)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/kinds", a.handlers.QR.Kinds)
		v1.POST("/qr/payload", a.handlers.QR.Payload)
		v1.POST("/qr/render", middleware.RenderRateLimitMiddleware(a.cfg), a.handlers.QR.Render)

		v1.POST("/microsites", a.handlers.Microsite.Create)
		v1.POST("/microsites/decode", a.handlers.QR.DecodeMicrosite)
		v1.GET("/microsites", admin, a.handlers.Microsite.List)
		v1.GET("/microsites/:slug", a.handlers.Microsite.Get)
		v1.PUT("/microsites/:slug", a.handlers.Microsite.Replace)
		v1.DELETE("/microsites/:slug", a.handlers.Microsite.Delete)
		v1.POST("/microsites/:slug/token", a.handlers.Microsite.RotateToken)
		v1.POST("/microsites/:slug/links", a.handlers.Microsite.AddLink)
		v1.POST("/microsites/:slug/links/reorder", a.handlers.Microsite.ReorderLinks)
		v1.PUT("/microsites/:slug/links/:linkId", a.handlers.Microsite.UpdateLink)
		v1.DELETE("/microsites/:slug/links/:linkId", a.handlers.Microsite.RemoveLink)

		v1.POST("/designs", a.handlers.Design.Create)
		v1.GET("/designs", a.handlers.Design.List)
		v1.GET("/designs/:id", a.handlers.Design.Get)
		v1.DELETE("/designs/:id", admin, a.handlers.Design.Delete)

		v1.POST("/uploads", middleware.UploadRateLimitMiddleware(a.cfg), a.handlers.Upload.Upload)
		v1.GET("/uploads", admin, a.handlers.Upload.List)
		v1.DELETE("/uploads", admin, a.handlers.Upload.Delete)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})

	a.router = router
}

func (a *Application) health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	}

	if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
		body["database"] = "unreachable"
	}
	if err := a.cache.Ping(c.Request.Context()); err != nil {
		body["cache"] = "unreachable"
	}
	if a.tasks != nil {
		body["pending_tasks"] = a.tasks.Pending()
	}

	c.JSON(status, body)
}

func normalizedPath(path string) string {
	path = "/" + strings.Trim(strings.TrimSpace(path), "/")
	if path == "/" {
		return "/m"
	}
	return path
}
