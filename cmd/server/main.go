package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dqdash/internal/api"
	"dqdash/internal/config"
	"dqdash/internal/model"
	"dqdash/internal/obs"
	"dqdash/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 初始化logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// 初始化配置
	cfg, err := config.ParseConfig()
	if err != nil {
		logrus.WithError(err).Error("Failed to parse config")
		os.Exit(1)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.WithField("log_level", cfg.LogLevel).Warn("unknown log level, keeping info")
	}

	repo, err := model.InitRepository(&cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise repository")
		os.Exit(1)
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	if err := model.SeedDefaults(seedCtx, repo, cfg); err != nil {
		logrus.WithError(err).Warn("failed to seed defaults")
	}
	cancelSeed()

	store, err := storage.NewStorage(cfg)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise storage")
		os.Exit(1)
	}

	metrics := obs.NewMetrics()
	httpHandler, err := api.NewHTTPHandler(cfg, repo, store, metrics)
	if err != nil {
		logrus.WithError(err).Error("failed to initialise http handler")
		os.Exit(1)
	}

	// 设置Gin模式
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// 添加中间件
	r.Use(gin.Recovery())
	r.Use(api.RequestIDMiddleware())
	r.Use(api.LoggingMiddleware())
	r.Use(api.CORSMiddleware(cfg.AllowedOrigins()))
	r.Use(metrics.Middleware())

	httpHandler.RegisterRoutes(r)

	serverHost := fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort)
	// 创建HTTP服务器
	httpServer := &http.Server{
		Addr:              serverHost,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("host", serverHost).Info("服务器启动")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logrus.WithError(err).Error("服务器启动失败")
			os.Exit(1)
		}
	case <-ctx.Done():
		logrus.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
	logrus.Info("服务器已停止")
}
