package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/susp3kt93/myfleet-sub000/internal/api/handlers"
	"github.com/susp3kt93/myfleet-sub000/internal/api/middleware"
	"github.com/susp3kt93/myfleet-sub000/internal/api/routes"
	"github.com/susp3kt93/myfleet-sub000/internal/config"
	"github.com/susp3kt93/myfleet-sub000/internal/events"
	"github.com/susp3kt93/myfleet-sub000/internal/metrics"
	"github.com/susp3kt93/myfleet-sub000/internal/repository"
	"github.com/susp3kt93/myfleet-sub000/internal/services"
	"github.com/susp3kt93/myfleet-sub000/internal/websocket"
	"github.com/susp3kt93/myfleet-sub000/pkg/cache"
	"github.com/susp3kt93/myfleet-sub000/pkg/database"
	"github.com/susp3kt93/myfleet-sub000/pkg/jwt"
	"github.com/susp3kt93/myfleet-sub000/pkg/ratelimit"
	"github.com/susp3kt93/myfleet-sub000/pkg/redis"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	setupLogging(cfg)

	policy, err := services.NewPolicy(cfg.Policy)
	if err != nil {
		log.WithError(err).Fatal("Invalid scheduling policy")
	}

	db, err := database.Connect(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Disconnect(db.Client())

	redisClient := redis.NewClient(cfg.Redis)
	defer redisClient.Close()

	if status := redisClient.HealthCheck(context.Background()); status.IsConnected {
		log.WithField("addr", status.ConnectionInfo).Info("Redis connected successfully")
	} else {
		log.WithField("error", status.Error).Warn("Redis connection failed, will retry automatically")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.NewMetrics(registry)
	}

	hub := websocket.NewHub(cfg.AllowedOrigins)
	hub.Start()
	defer hub.Stop()

	bus := events.NewBus()
	bus.Subscribe("log", events.NewLogPublisher(log.StandardLogger()))
	bus.Subscribe("redis", events.NewRedisPublisher(redisClient, events.DefaultChannelPrefix))
	bus.Subscribe("websocket", hub)
	bus.Observe(m.EventPublished)

	opts := services.Options{Events: bus, Metrics: m, Policy: &policy, Batch: &cfg.Batch}
	h := buildHandlers(db, redisClient, hub, opts)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	if cfg.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	routeOpts := routes.Options{JWT: jwt.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiry)}
	if cfg.RateLimit {
		rlConfig := ratelimit.DefaultConfig()
		routeOpts.RateLimitConfig = rlConfig
		if redisClient.IsConnected() {
			routeOpts.Limiter = ratelimit.NewRedisRateLimiter(redisClient.GetClient(), rlConfig)
			log.Info("Using Redis rate limiter")
		} else {
			routeOpts.Limiter = ratelimit.NewMemoryRateLimiter(rlConfig)
			log.Info("Using in-memory rate limiter")
		}
	}
	routes.SetupRoutes(router, h, routeOpts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
}

func buildHandlers(db *mongo.Database, redisClient *redis.Client, hub *websocket.Hub, opts services.Options) routes.Handlers {
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	timeOffRepo := repository.NewTimeOffRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	deductionRepo := repository.NewDeductionRepository(db)
	companyRepo := repository.NewCompanyRepository(db)

	taskService := services.NewTaskService(taskRepo, userRepo, companyRepo, opts)
	timeOffService := services.NewTimeOffService(timeOffRepo, userRepo, companyRepo, opts)
	vehicleService := services.NewVehicleService(vehicleRepo, userRepo, companyRepo, opts)
	vehicleService.SetCache(cache.NewRedisCache(redisClient, cache.DefaultConfig()))
	deductionService := services.NewDeductionService(deductionRepo, userRepo, companyRepo, opts)
	reportService := services.NewReportService(taskRepo, userRepo, timeOffRepo, deductionRepo, companyRepo, opts)

	return routes.Handlers{
		Health: handlers.NewHealthHandler(func(ctx context.Context) error {
			return database.Health(ctx, db)
		}, redisClient, nil),
		Tasks:      handlers.NewTaskHandler(taskService),
		TimeOff:    handlers.NewTimeOffHandler(timeOffService),
		Vehicles:   handlers.NewVehicleHandler(vehicleService),
		Deductions: handlers.NewDeductionHandler(deductionService),
		Reports:    handlers.NewReportHandler(reportService),
		Events:     handlers.NewWebSocketHandler(hub),
	}
}

func setupLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Upgrade", "Connection", "Sec-WebSocket-Key", "Sec-WebSocket-Version", "Sec-WebSocket-Protocol"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
	}

	// Credentials cannot be combined with a wildcard origin.
	if len(origins) == 1 && origins[0] == "*" {
		config.AllowAllOrigins = true
		config.AllowCredentials = false
	} else {
		config.AllowOrigins = origins
		config.AllowCredentials = true
	}
	return config
}
