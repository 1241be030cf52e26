package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/camp-planner/internal/application"
	"github.com/example/camp-planner/internal/config"
	httptransport "github.com/example/camp-planner/internal/http"
	"github.com/example/camp-planner/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	userRepo := sqlite.NewUserRepository(pool)
	eventRepo := sqlite.NewEventRepository(pool)
	equipmentRepo := sqlite.NewEquipmentRepository(pool)
	mealRepo := sqlite.NewMealRepository(pool)
	attendanceRepo := sqlite.NewAttendanceRepository(pool)

	tokenIssuer := application.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL, now)

	authService := application.NewAuthService(userRepo, tokenIssuer, logger)
	userService := application.NewUserService(userRepo, cfg.OpenSignup, idGenerator, now, logger)
	eventService := application.NewEventService(eventRepo, idGenerator, now, logger)
	equipmentService := application.NewEquipmentService(equipmentRepo, eventRepo, idGenerator, now, logger)
	mealService := application.NewMealService(mealRepo, idGenerator, now, logger)
	attendanceService := application.NewAttendanceService(attendanceRepo, eventRepo, equipmentRepo, idGenerator, now, logger)
	mealChoiceService := application.NewMealChoiceService(attendanceRepo, idGenerator, now, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:        httptransport.NewAuthHandler(authService, logger),
		Users:       httptransport.NewUserHandler(userService, logger),
		Events:      httptransport.NewEventHandler(eventService, logger),
		Attendances: httptransport.NewAttendanceHandler(attendanceService, logger),
		Equipments:  httptransport.NewEquipmentHandler(equipmentService, logger),
		Meals:       httptransport.NewMealHandler(mealService, logger),
		MealChoices: httptransport.NewMealChoiceHandler(mealChoiceService, logger),

		Middleware:    []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
		Authenticator: httptransport.RequireAuth(authService, logger),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("camp planner API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
