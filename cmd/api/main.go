package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/campusquest/campusquest-api/internal/config"
	"github.com/campusquest/campusquest-api/internal/domain/auth"
	"github.com/campusquest/campusquest-api/internal/domain/course"
	"github.com/campusquest/campusquest-api/internal/domain/ledger"
	"github.com/campusquest/campusquest-api/internal/domain/notification"
	"github.com/campusquest/campusquest-api/internal/domain/quest"
	"github.com/campusquest/campusquest-api/internal/domain/redemption"
	"github.com/campusquest/campusquest-api/internal/domain/reward"
	"github.com/campusquest/campusquest-api/internal/middleware"
	"github.com/campusquest/campusquest-api/internal/pkg/database"
	"github.com/campusquest/campusquest-api/internal/pkg/events"
	"github.com/campusquest/campusquest-api/internal/pkg/imaging"
	"github.com/campusquest/campusquest-api/internal/pkg/jwt"
	"github.com/campusquest/campusquest-api/internal/pkg/logger"
	pkgresponse "github.com/campusquest/campusquest-api/internal/pkg/response"
	"github.com/campusquest/campusquest-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting CampusQuest API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	// ---------- Event stream ----------
	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// ---------- Icon storage ----------
	var iconStorage storage.Storage
	if cfg.R2AccountID != "" {
		iconStorage, err = storage.NewR2Storage(storage.R2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			BucketName:      cfg.R2BucketName,
			PublicURL:       cfg.R2PublicURL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create R2 storage")
		}
	} else {
		iconStorage, err = storage.NewLocalStorage("./uploads", "/uploads")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create local storage")
		}
	}

	// ---------- WebSocket hub ----------
	hub := notification.NewHub(redisClient)
	go hub.Run()
	defer hub.Shutdown()

	// ---------- Repositories ----------
	userRepo := auth.NewRepository(db)
	courseRepo := course.NewRepository(db)
	questRepo := quest.NewRepository(db)
	rewardRepo := reward.NewRepository(db)
	ledgerRepo := ledger.NewRepository(db)
	redemptionStore := redemption.NewPostgresStore(db)

	// ---------- Services ----------
	authService := auth.NewService(userRepo, jwtService)
	courseService := course.NewService(courseRepo)
	ledgerService := ledger.NewService(ledgerRepo, redisClient)
	questService := quest.NewService(questRepo, courseService, ledgerService, publisher, hub)
	rewardService := reward.NewService(rewardRepo, courseService, iconStorage, imaging.NewProcessor(imaging.DefaultConfig()))
	redemptionService := redemption.NewService(
		redemptionStore,
		ledgerService,
		rewardRepo,
		courseService,
		publisher,
		hub,
		cfg.PurchaseMaxRetries,
	)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	courseHandler := course.NewHandler(courseService)
	questHandler := quest.NewHandler(questService)
	rewardHandler := reward.NewHandler(rewardService)
	ledgerHandler := ledger.NewHandler(ledgerService)
	redemptionHandler := redemption.NewHandler(redemptionService)
	notificationHandler := notification.NewHandler(hub, cfg.AllowedOrigins)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))

	// WebSocket endpoint (before Compress)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token != "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		authMiddleware(http.HandlerFunc(notificationHandler.WebSocket)).ServeHTTP(w, r)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Compress(5))
		r.Use(middleware.Timeout(30 * time.Second))

		r.Mount("/auth", authHandler.Routes(authMiddleware))
		r.Mount("/courses", courseHandler.Routes(authMiddleware, func(r chi.Router) {
			r.Mount("/quests", questHandler.CourseRoutes(authMiddleware))
			r.Mount("/rewards", rewardHandler.CourseRoutes(authMiddleware))
			r.Mount("/redemptions", redemptionHandler.CourseRoutes(authMiddleware))
		}))
		r.Mount("/quests", questHandler.Routes(authMiddleware))
		r.Mount("/rewards", rewardHandler.Routes(authMiddleware))
		r.Mount("/purchases", redemptionHandler.PurchaseRoutes(authMiddleware))
		r.Mount("/redemptions", redemptionHandler.Routes(authMiddleware))
		r.Mount("/points", ledgerHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
