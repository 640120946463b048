// Package config provides Viper-based hierarchical configuration management
// and .env loading for the dashboard.
package config

import (
	"os"
	"path/filepath"
	"sync"

	"pisopatrol/dashboard/internal/logging"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads environment variables from a .env file if one exists in the
// working directory or its parent. Missing files are not an error.
func LoadEnv(log logging.Logger) {
	envOnce.Do(func() {
		envFile := ".env"
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			envFile = filepath.Join("..", ".env")
			if _, err := os.Stat(envFile); os.IsNotExist(err) {
				log.Debug("No .env file found, using environment variables")
				return
			}
		}

		if err := godotenv.Load(envFile); err != nil {
			log.WithError(err).Warn("Error loading .env file")
			return
		}
		log.Info("Loaded environment variables", logging.F("file", envFile))
	})
}
