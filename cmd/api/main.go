package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kkampardi/educa-coursware/api/swagger"
	"github.com/kkampardi/educa-coursware/internal/handler"
	"github.com/kkampardi/educa-coursware/internal/middleware"
	"github.com/kkampardi/educa-coursware/internal/repository"
	"github.com/kkampardi/educa-coursware/internal/service"
	"github.com/kkampardi/educa-coursware/pkg/cache"
	"github.com/kkampardi/educa-coursware/pkg/config"
	"github.com/kkampardi/educa-coursware/pkg/database"
	"github.com/kkampardi/educa-coursware/pkg/jobs"
	"github.com/kkampardi/educa-coursware/pkg/logger"
	corsmiddleware "github.com/kkampardi/educa-coursware/pkg/middleware/cors"
	reqidmiddleware "github.com/kkampardi/educa-coursware/pkg/middleware/requestid"
	"github.com/kkampardi/educa-coursware/pkg/storage"
)

// @title Educa Coursware API
// @version 1.0.0
// @description Course management and e-learning catalog API
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const tokenPurgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// the catalog degrades to direct reads without redis
		logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
		redisClient = nil
	}

	mediaStore, err := storage.NewMediaStore(cfg.Media.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare media storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Media.SignedURLSecret, cfg.Media.SignedURLTTL)

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	moduleRepo := repository.NewModuleRepository(db)
	contentRepo := repository.NewContentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "educa-coursware",
	})
	subjectService := service.NewSubjectService(subjectRepo, validate, logr)
	courseService := service.NewCourseService(courseRepo, subjectRepo, validate, logr)
	catalogService := service.NewCatalogService(subjectRepo, courseRepo, cacheRepo, metricsService,
		cfg.Catalog.CacheEnabled && redisClient != nil, cfg.Catalog.CacheTTL, logr)
	moduleService := service.NewModuleService(moduleRepo, courseRepo, enrollmentRepo, validate, logr)
	contentService := service.NewContentService(contentRepo, moduleRepo, enrollmentRepo, metricsService, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, metricsService, logr)
	exportService := service.NewExportService(courseRepo, moduleRepo, contentRepo, enrollmentRepo, logr)
	mediaService := service.NewMediaService(mediaStore, signer, cfg.Media.MaxFileSizeBytes, logr)

	dispatcher := jobs.NewDispatcher(jobs.Options{Workers: 1}, logr)
	dispatcher.Register("purge_refresh_tokens", func(ctx context.Context, task jobs.Task) error {
		deleted, err := userRepo.DeleteExpiredRefreshTokens(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		if deleted > 0 {
			logr.Sugar().Infow("purged expired refresh tokens", "deleted", deleted)
		}
		return nil
	})
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()
	dispatcher.Every(tokenPurgeInterval, jobs.Task{Name: "purge_refresh_tokens"})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r, cfg.APIPrefix, authService, handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Catalog:    handler.NewCatalogHandler(catalogService, courseService),
		Subject:    handler.NewSubjectHandler(subjectService),
		Course:     handler.NewCourseHandler(courseService),
		Module:     handler.NewModuleHandler(moduleService),
		Content:    handler.NewContentHandler(contentService),
		Enrollment: handler.NewEnrollmentHandler(enrollmentService),
		Export:     handler.NewExportHandler(exportService),
		Media:      handler.NewMediaHandler(mediaService),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
