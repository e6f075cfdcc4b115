// Package main API Server 入口
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-admin/internal/apiserver/audit"
	"shop-admin/internal/apiserver/auth"
	"shop-admin/internal/apiserver/metrics"
	"shop-admin/internal/apiserver/server"
	"shop-admin/internal/config"
	"shop-admin/internal/shared/infra"
	"shop-admin/pkg/logging"
)

func main() {
	// 加载配置（.env + {env}.yaml + 环境变量）
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    cfg.Log.Output,
		Component: "api-server",
	})

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())
	if cfg.ConfigFilePath != "" {
		log.Printf("Config file: %s (dir from %s)", cfg.ConfigFilePath, cfg.ConfigSource)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 数据库 + 媒体存储 + 可选 Redis
	inf, err := infra.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	defer inf.Close()

	if _, err := auth.EnsureSuperAdmin(ctx, inf.Storage, cfg.Auth.SuperAdminEmail, cfg.Auth.SuperAdminPassword, cfg.Auth.BcryptCost); err != nil {
		log.Fatalf("Failed to ensure super admin: %v", err)
	}

	m := metrics.New("shop")
	h, err := server.NewHandler(server.Options{
		Store:   inf.Storage,
		Blobs:   inf.Blobs,
		Config:  cfg,
		Metrics: m,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("Failed to create handler: %v", err)
	}

	// 审计日志保留期清理
	opts := []audit.SweeperOption{audit.WithMetrics(m), audit.WithLogger(logger)}
	if inf.Locker != nil {
		opts = append(opts, audit.WithLocker(inf.Locker))
	}
	sweeper := audit.NewSweeper(inf.Storage, cfg.Audit.RetentionDays, cfg.Audit.SweepInterval, opts...)
	go sweeper.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.APIServer.Port,
		Handler:      h.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIServer.Port)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
