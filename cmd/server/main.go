package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pelada/matchday/internal/auth"
	"github.com/pelada/matchday/internal/config"
	"github.com/pelada/matchday/internal/handler"
	"github.com/pelada/matchday/internal/router"
	"github.com/pelada/matchday/internal/service"
	"github.com/pelada/matchday/internal/storage/sqlite"
	"github.com/pelada/matchday/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.Database.Path)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpireHours)*time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	locks := service.NewLocks()
	admissionSvc := service.NewAdmissionService(store, locks)
	teamSvc := service.NewTeamService(store, locks)
	settlementSvc := service.NewSettlementService(store, locks)
	matchSvc := service.NewMatchService(store)
	authSvc := service.NewAuthService(authenticator, jwtManager)

	r := router.Setup(cfg.Server.Mode, jwtManager, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Match:      handler.NewMatchHandler(matchSvc),
		Admission:  handler.NewAdmissionHandler(admissionSvc, settlementSvc),
		Team:       handler.NewTeamHandler(teamSvc),
		Settlement: handler.NewSettlementHandler(settlementSvc),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	slog.Info("Server starting", "address", addr)
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
