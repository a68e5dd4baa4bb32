package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/lromerof/comite-agua/internal/auth"
	"github.com/lromerof/comite-agua/internal/backup"
	"github.com/lromerof/comite-agua/internal/config"
	"github.com/lromerof/comite-agua/internal/db"
	"github.com/lromerof/comite-agua/internal/importer"
	"github.com/lromerof/comite-agua/internal/ledger"
	"github.com/lromerof/comite-agua/internal/logger"
	"github.com/lromerof/comite-agua/internal/member"
	"github.com/lromerof/comite-agua/internal/middleware"
	"github.com/lromerof/comite-agua/internal/migrate"
	"github.com/lromerof/comite-agua/internal/receipt"
	"github.com/lromerof/comite-agua/internal/tariff"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}

	logg := logger.New(cfg.Log.Level)

	ctx := context.Background()
	database, err := db.Open(ctx, db.Config{
		Path:        cfg.Store.Path,
		BusyTimeout: 5 * time.Second,
	})
	if err != nil {
		logg.Error("open database", "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := migrate.Up(ctx, database); err != nil {
		logg.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	memberRepo := member.NewRepository(database)
	memberSvc := member.NewService(memberRepo)

	tariffRepo := tariff.NewRepository(database)
	tariffSvc := tariff.NewService(tariffRepo)

	ledgerRepo := ledger.NewRepository(database)
	ledgerSvc := ledger.NewService(ledgerRepo, tariffSvc, memberSvc, ledger.Config{
		AllowCancelled: cfg.Ledger.AllowCancelled,
	})

	renderer := receipt.NewRenderer(cfg.Receipt.OutputDir, tariffSvc)
	importSvc := importer.NewService(memberSvc, ledgerSvc)
	backupSvc := backup.NewService(database, cfg.Store.Path, cfg.Backup.Dir)
	authSvc := auth.NewService(tariffSvc, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logg))

	auth.NewHandler(authSvc).RegisterRoutes(router)

	protected := router.Group("/", auth.RequireAuth(authSvc))
	member.NewHandler(memberSvc).RegisterRoutes(protected)
	tariff.NewHandler(tariffSvc).RegisterRoutes(protected)
	ledger.NewHandler(ledgerSvc, memberSvc).RegisterRoutes(protected)
	receipt.NewHandler(ledgerSvc, renderer).RegisterRoutes(protected)
	importer.NewHandler(importSvc).RegisterRoutes(protected)
	backup.NewHandler(backupSvc).RegisterRoutes(protected)

	logg.Info("starting server", "port", cfg.App.Port, "env", cfg.App.Env)
	if err := router.Run(":" + cfg.App.Port); err != nil {
		logg.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
