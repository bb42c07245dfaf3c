package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/connectai/backend/internal/router"
	"github.com/connectai/backend/internal/services"
	"github.com/connectai/backend/internal/storage"
	"github.com/connectai/backend/pkg/config"
	"github.com/connectai/backend/pkg/firebase"
	"github.com/connectai/backend/pkg/logger"
	"github.com/connectai/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if err := cfg.Validate(); err != nil {
		zlog.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	if err := config.EnsureIndexes(ctx, db.Mongo.Database(cfg.MongoDatabase)); err != nil {
		zlog.Fatal("failed to create MongoDB indexes", zap.Error(err))
	}
	if err := config.AutoMigrate(db.Postgres); err != nil {
		zlog.Fatal("failed to migrate PostgreSQL", zap.Error(err))
	}

	// Firebase is optional: without it ID token sign-in is disabled and
	// uploads are stored on local disk.
	var verifier services.IDTokenVerifier
	var uploader storage.Uploader
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
		if err != nil {
			zlog.Fatal("failed to initialize Firebase", zap.Error(err))
		}
		verifier = app.AuthClient
		if app.Bucket != nil {
			uploader = storage.NewFirebaseUploader(app.Bucket, app.BucketName)
		}
		zlog.Info("firebase initialized", zap.Bool("storage", app.Bucket != nil))
	}
	if uploader == nil {
		local, err := storage.NewLocalUploader(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			zlog.Fatal("failed to prepare upload directory", zap.Error(err))
		}
		uploader = local
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, zlog, cfg, ctx.Done())
	router.SetupRoutes(e, router.Dependencies{
		Config:   cfg,
		DB:       db,
		Log:      zlog,
		Uploader: uploader,
		Verifier: verifier,
	})

	// Start server
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			zlog.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
