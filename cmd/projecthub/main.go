package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"projecthub/internal/app"
	"projecthub/internal/config"
	"projecthub/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	envFilePath      = ".env"
	signalBufferSize = 1
)

var shutdownSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
}

func main() {
	if err := godotenv.Load(envFilePath); err != nil {
		logrus.Warn(".env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("configuration loaded")

	service, err := app.InitializeService(context.Background(), cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize service")
	}

	go func() {
		if err := service.Start(); err != nil {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, signalBufferSize)
	signal.Notify(quit, shutdownSignals...)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := service.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited gracefully")
}
