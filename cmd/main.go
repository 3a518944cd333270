package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/shenikar/radius/internal/config"
	"github.com/shenikar/radius/internal/dispatch"
	"github.com/shenikar/radius/internal/feed"
	"github.com/shenikar/radius/internal/geo"
	v1 "github.com/shenikar/radius/internal/handler/http/v1"
	"github.com/shenikar/radius/internal/hub"
	"github.com/shenikar/radius/internal/models"
	"github.com/shenikar/radius/internal/repository"
	"github.com/shenikar/radius/internal/service"
	"github.com/shenikar/radius/internal/synchronizer"
	"github.com/shenikar/radius/pkg/logger"
	"github.com/shenikar/radius/pkg/postgres"
	redisclient "github.com/shenikar/radius/pkg/redis"
	"github.com/sirupsen/logrus"

	_ "github.com/shenikar/radius/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Radius Campus Emergency API
// @version 1.0
// @description Live map of active campus incidents and the SOS dispatch button.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func runMigrations(cfg *config.Config, log *logrus.Logger) error {
	log.Info("Running database migrations...")

	migrationURL := cfg.DatabaseURL
	if !strings.HasPrefix(migrationURL, "pgx5://") {
		migrationURL = strings.Replace(migrationURL, "postgres://", "pgx5://", 1)
	}

	m, err := migrate.New(
		"file://migrations",
		migrationURL,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied successfully")
	return nil
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Контекст живет до сигнала остановки
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Запуск миграций
	if err := runMigrations(cfg, log); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Подключение к PostgreSQL
	dbpool, err := postgres.NewPostgresDB(ctx, cfg.DatabaseURL, "radius")
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbpool.Close()
	log.Info("Successfully connected to PostgreSQL")

	// Инициализация Redis клиента
	redisClient, err := redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Info("Successfully connected to Redis")

	// Инициализация репозиториев
	incidentRepo := repository.NewIncidentRepository(dbpool, redisClient, log, repository.Options{
		CacheTTL: cfg.IncidentCacheTTL,
	})

	// Инициализация сервисов
	incidentService := service.NewIncidentService(incidentRepo, log)

	// Поток изменений и синхронизатор набора активных инцидентов
	feedClient := feed.NewClient(incidentRepo, log, feed.Options{
		ReconnectBaseDelay: cfg.FeedReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.FeedReconnectMaxDelay,
	})
	incidentSync := synchronizer.New(feedClient, log)
	incidentSync.OnError(func(err error) {
		log.WithError(err).Warn("Incident feed reported an error")
	})
	if err := incidentSync.Start(ctx); err != nil {
		// Подписка продолжает работать и повторяет снимок с экспоненциальной задержкой
		log.WithError(err).Error("Initial incident snapshot failed")
	}
	defer incidentSync.Stop()
	log.WithField("incidents", incidentSync.Count()).Info("Incident synchronizer started")

	// Источник местоположения для кнопки SOS
	var locator geo.Provider = geo.Unavailable{}
	if cfg.GeoProviderURL != "" {
		locator = geo.NewHTTPProvider(cfg.GeoProviderURL, log)
	} else {
		log.Warn("GEO_PROVIDER_URL is not set, dispatches will use fallback coordinates")
	}

	workflow := dispatch.NewWorkflow(locator, incidentService, log, dispatch.Options{
		GeoTimeout:          cfg.GeoTimeout,
		WriteTimeout:        cfg.DispatchWriteTimeout,
		SentDisplayInterval: cfg.SentDisplayInterval,
		Fallback:            models.Coordinates{Latitude: cfg.FallbackLatitude, Longitude: cfg.FallbackLongitude},
	})

	// Websocket рассылка для карты
	wsHub := hub.NewHub(incidentSync, workflow, log)
	incidentSync.OnIncidentsChanged(wsHub.BroadcastIncidents)
	workflow.OnStateChanged(wsHub.BroadcastDispatch)
	defer wsHub.Close()

	// Инициализация хэндлеров
	handler := v1.NewHandler(incidentService, incidentSync, workflow, wsHub, log, cfg)

	// Настройка Gin роутера
	router := gin.Default()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	// Добавление маршрута для Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Запуск HTTP-сервера
	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)

	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Запуск сервера в горутине
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting HTTP server: %v", err)
		}
	}()
	log.Infof("HTTP server started on port %s", cfg.HTTPPort)

	// Graceful shutdown
	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal, shutting down server...")
	case <-incidentSync.Done():
		log.Error("Incident synchronizer stopped unexpectedly, shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server gracefully stopped")
}
