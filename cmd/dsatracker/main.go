package main

import (
	"flag"
	"fmt"
	"os"

	"dsatracker/pkg/config"
	"dsatracker/pkg/db"
	"dsatracker/pkg/export"
	"dsatracker/pkg/logger"
	"dsatracker/pkg/seed"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the configuration file")
	exportUser := flag.Uint("export-user", 0, "export progress for the given user id and exit")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := logger.Configure(logger.Options{
		Level: config.AppConfig.Logging.Level,
		File:  config.AppConfig.Logging.File,
	}); err != nil {
		logger.Error("failed to configure logger", "error", err)
	}

	if err := db.InitDB(config.AppConfig.Database); err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	if err := db.EnsureSeedAccounts(config.AppConfig.Seed.DemoUser); err != nil {
		logger.Error("failed to seed accounts", "error", err)
		os.Exit(1)
	}
	if err := seed.LoadFromConfig(); err != nil {
		logger.Error("failed to load seed questions", "error", err)
		os.Exit(1)
	}

	if *exportUser != 0 {
		path, err := export.WriteProgress(uint(*exportUser))
		if err != nil {
			logger.Error("failed to export progress", "user_id", *exportUser, "error", err)
			os.Exit(1)
		}
		fmt.Println(path)
		return
	}

	topics, err := db.ListTopics()
	if err != nil {
		logger.Error("failed to list topics", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready", "topics", len(topics))
}
