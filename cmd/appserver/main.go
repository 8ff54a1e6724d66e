// Package main runs the social layer HTTP server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/R3E-Network/social_layer/internal/app/runtime"
	"github.com/R3E-Network/social_layer/internal/config"
	"github.com/R3E-Network/social_layer/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (overrides CONFIG_FILE)")
	flag.Parse()

	log := logger.NewDefault("appserver")

	if *configPath != "" {
		if err := os.Setenv(config.EnvConfigFile, *configPath); err != nil {
			log.WithError(err).Fatal("set config path")
		}
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := runtime.NewApplication(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("initialise application")
	}

	if err := application.Run(ctx); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
	log.Info("server stopped")
}
