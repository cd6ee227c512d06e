// @title LearnPulse Instructor Assistant API
// @version 1.0
// @description Backend for the LearnPulse AI instructor assistant: conversational analytics over learner activity data.

// @contact.name API Support
// @contact.email support@learnpulse.ai

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"learnpulse_backend/internal/app"
	"learnpulse_backend/internal/config"
	"learnpulse_backend/pkg/configwatcher"
	"learnpulse_backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs", "directory containing config.yaml")
	watch := flag.Bool("watch-config", false, "reload logging level when config.yaml changes")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *watch {
		go configwatcher.WatchConfig(*configPath, func(updated *config.Config) {
			logger.InitLogger(updated)
			logger.Log.Info("Configuration reloaded")
		})
	}

	application.Run()
}
