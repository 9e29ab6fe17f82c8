package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/taleik/taleik-api/internal/handlers"
	"github.com/taleik/taleik-api/internal/jwt"
	"github.com/taleik/taleik-api/internal/logger"
	"github.com/taleik/taleik-api/internal/middlewares"
	"github.com/taleik/taleik-api/internal/models"
	"github.com/taleik/taleik-api/internal/repositories"
	"github.com/taleik/taleik-api/internal/services"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title Taleik API
// @version 1.0.0
// @description Backend service for user accounts, profiles, audit logs and todos
// @host localhost:3000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, logLevel,
		databaseURL,
		redisAddr, redisDB, redisPassword, redisPoolSize, redisMinIdleConns,
		cacheTTLSecond,
		kafkaAddr, kafkaTopic,
		jwtSecretKey, jwtExpSecond,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort, logLevel,
		databaseURL,
		redisAddr, redisDB, redisPassword, redisPoolSize, redisMinIdleConns,
		cacheTTLSecond,
		kafkaAddr, kafkaTopic,
		jwtSecretKey, jwtExpSecond,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns the
// application, storage, Redis, Kafka, logging and JWT configuration. Redis
// and Kafka are optional; an empty address disables them.
func parseConfig(path string) (
	appHost, appPort, logLevel string,
	databaseURL string,
	redisAddr string, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns int,
	cacheTTLSecond int,
	kafkaAddr, kafkaTopic string,
	jwtSecretKey string, jwtExpSecond int,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "3000")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// Storage config. The default keeps everything in memory.
	databaseURL = getEnv("DATABASE_URL", "file:taleik?mode=memory&cache=shared")

	// Redis config
	redisAddr = getEnv("REDIS_ADDR", "")
	redisPassword = getEnv("REDIS_PASSWORD", "")
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	if redisPoolSize, err = strconv.Atoi(getEnv("REDIS_POOL_SIZE", "10")); err != nil {
		return
	}
	if redisMinIdleConns, err = strconv.Atoi(getEnv("REDIS_MIN_IDLE_CONNS", "2")); err != nil {
		return
	}
	if cacheTTLSecond, err = strconv.Atoi(getEnv("PROFILE_CACHE_TTL_SECOND", "300")); err != nil {
		return
	}

	// Kafka config
	kafkaAddr = getEnv("AUDIT_KAFKA_ADDR", "")
	kafkaTopic = getEnv("AUDIT_KAFKA_TOPIC", "audit-events")

	// JWT config. Tokens live for 7 days by default.
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production")
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "604800")); err != nil {
		return
	}

	return
}

// run initializes the logger, storage, optional Redis and Kafka, and the
// HTTP server. It sets up routes, applies middleware, and handles graceful
// shutdown.
func run(ctx context.Context,
	appHost, appPort, logLevel string,
	databaseURL string,
	redisAddr string, redisDB int, redisPassword string,
	redisPoolSize, redisMinIdleConns int,
	cacheTTLSecond int,
	kafkaAddr, kafkaTopic string,
	jwtSecretKey string, jwtExpSecond int,
) error {
	// Initialize logger
	if err := logger.Initialize(logLevel); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", logLevel)

	// Open storage
	logger.Log.Infof("Opening store: %s", databaseURL)
	db, err := repositories.Open(ctx, databaseURL)
	if err != nil {
		logger.Log.Errorw("store open error", "error", err)
		return err
	}
	defer db.Close()

	// Connect to Redis when configured
	var cache services.ProfileCache
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         redisAddr,
			Password:     redisPassword,
			DB:           redisDB,
			PoolSize:     redisPoolSize,
			MinIdleConns: redisMinIdleConns,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.Errorw("Redis connection error", "error", err)
			return err
		}
		defer rdb.Close()
		cache = repositories.NewProfileCacheRepository(rdb, time.Duration(cacheTTLSecond)*time.Second)
		logger.Log.Infof("Profile cache enabled at %s", redisAddr)
	}

	// Connect to Kafka when configured
	var auditEvents services.KafkaWriter
	if kafkaAddr != "" {
		writer := &kafka.Writer{
			Addr:     kafka.TCP(kafkaAddr),
			Topic:    kafkaTopic,
			Balancer: &kafka.LeastBytes{},
		}
		defer writer.Close()
		auditEvents = writer
		logger.Log.Infof("Audit event mirror enabled at %s, topic %s", kafkaAddr, kafkaTopic)
	}

	// Initialize JWT service
	tokens := jwt.New(jwtSecretKey, time.Duration(jwtExpSecond)*time.Second)

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(db)
	userWriteRepo := repositories.NewUserWriteRepository(db)
	auditReadRepo := repositories.NewAuditLogReadRepository(db)
	auditWriteRepo := repositories.NewAuditLogWriteRepository(db)
	todoRepo := repositories.NewTodoRepository(db)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, tokens, auditWriteRepo)
	profileService := services.NewProfileService(userReadRepo, userWriteRepo, auditWriteRepo, auditReadRepo, cache, auditEvents)
	todoService := services.NewTodoService(todoRepo)

	// Setup router
	authenticate := middlewares.Authenticate(tokens, authService)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", handlers.NewRegisterHandler(authService))
		r.Post("/login", handlers.NewLoginHandler(authService))

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", handlers.NewMeHandler())
			r.Put("/change-password", handlers.NewChangePasswordHandler(authService))
			r.Post("/logout", handlers.NewLogoutHandler(profileService))
		})
	})

	r.Route("/api/profile", func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/", handlers.NewGetProfileHandler(profileService))
		r.Put("/", handlers.NewUpdateProfileHandler(profileService))
		r.Delete("/", handlers.NewDeleteProfileHandler(profileService))
		r.Get("/audit-logs", handlers.NewGetAuditLogsHandler(profileService))

		r.With(middlewares.RequireRoles(models.RoleAdmin, models.RoleSupport)).
			Get("/{userId}/audit-logs", handlers.NewGetUserAuditLogsHandler(profileService))
	})

	r.Route("/api/todos", func(r chi.Router) {
		r.Get("/", handlers.NewListTodosHandler(todoService))
		r.Post("/", handlers.NewCreateTodoHandler(todoService))
		r.Get("/{id}", handlers.NewGetTodoHandler(todoService))
		r.Put("/{id}", handlers.NewUpdateTodoHandler(todoService))
		r.Delete("/{id}", handlers.NewDeleteTodoHandler(todoService))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}
