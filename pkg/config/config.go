package config

import (
	"encoding/json"
	"os"

	"dsatracker/pkg/logger"
)

type Config struct {
	Database DatabaseConfig `json:"database"`
	Logging  LoggingConfig  `json:"logging"`
	Seed     SeedConfig     `json:"seed"`
	Export   ExportConfig   `json:"export"`
}

type DatabaseConfig struct {
	// Driver selects the backend: "sqlite" (default) or "postgres".
	Driver   string `json:"driver"`
	Path     string `json:"path"` // sqlite database file
	Host     string `json:"host"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	Port     int    `json:"port"`
	SSLMode  string `json:"sslmode"`
}

type LoggingConfig struct {
	Level     string `json:"level"`
	File      string `json:"file"`
	GormLevel string `json:"gorm_level"`
}

type SeedConfig struct {
	// QuestionsPath points at the JSON question bank consumed on first
	// boot while the questions table is empty.
	QuestionsPath string `json:"questions_path"`
	// DemoUser seeds a default user account alongside the default admin.
	DemoUser bool `json:"demo_user"`
}

type ExportConfig struct {
	Dir string `json:"dir"`
}

var AppConfig Config

func LoadConfig(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		logger.Error("failed to open config file", "error", err)
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&AppConfig); err != nil {
		logger.Error("failed to decode config file", "error", err)
		return err
	}

	return nil
}
