package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/senseihimanshu/blood-donation/internal/config"
	rh "github.com/senseihimanshu/blood-donation/internal/handler/rest"
	wsh "github.com/senseihimanshu/blood-donation/internal/handler/ws"
	"github.com/senseihimanshu/blood-donation/internal/matching"
	"github.com/senseihimanshu/blood-donation/internal/middleware"
	"github.com/senseihimanshu/blood-donation/internal/repository"
	"github.com/senseihimanshu/blood-donation/internal/router"
	"github.com/senseihimanshu/blood-donation/internal/seed"
	"github.com/senseihimanshu/blood-donation/internal/usecase"
	"github.com/senseihimanshu/blood-donation/pkg/jwtutil"
	"github.com/senseihimanshu/blood-donation/pkg/notifier"
	"github.com/senseihimanshu/blood-donation/pkg/notifier/ws"
)

func NewServer(cfg config.AppConfig) *http.Server {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect DB: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       0,
	})
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	log.Println("[Redis] Connected successfully")

	// --- Repositories ---
	donorRepo := repository.NewDonorRepository(db, logger)
	hospitalRepo := repository.NewHospitalRepository(db, logger)
	requestRepo := repository.NewRequestRepository(db, logger)

	// --- Matching + notification fan-out ---
	engine := matching.NewEngine(donorRepo, logger)
	hub := ws.NewHub(logger)
	go hub.Heartbeat(30 * time.Second)
	push := notifier.New(hub)

	// --- Auth ---
	signer := jwtutil.NewSigner(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	auth := middleware.NewAuthMiddleware(signer)

	// --- Usecases ---
	authUsecase := usecase.NewAuthUsecase(donorRepo, hospitalRepo, signer, logger)
	donorUsecase := usecase.NewDonorUsecase(donorRepo, logger)
	hospitalUsecase := usecase.NewHospitalUsecase(hospitalRepo, logger)
	requestUsecase := usecase.NewRequestUsecase(requestRepo, donorRepo, hospitalRepo, engine, push, rdb, logger)

	// --- Handlers ---
	authHandler := rh.NewAuthHandler(authUsecase, donorUsecase, hospitalUsecase, logger)
	donorHandler := rh.NewDonorHandler(donorUsecase, logger)
	hospitalHandler := rh.NewHospitalHandler(hospitalUsecase, logger)
	requestHandler := rh.NewRequestHandler(requestUsecase, logger)
	wsHandler := wsh.NewWSHandler(hub, logger)

	if cfg.SeedDemoData {
		if err := seed.Run(ctx, authUsecase, requestUsecase, logger); err != nil {
			logger.Warn("Demo data seeding failed", zap.Error(err))
		}
	}

	r := router.SetupRoutes(chi.NewRouter(), authHandler, donorHandler, hospitalHandler, requestHandler, wsHandler, auth, rdb)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}
}
