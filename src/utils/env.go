package utils

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const ENV_FILENAME = ".env"

// InitEnvironmentVariables loads the local .env file. Production deployments
// inject real environment variables instead, so a missing file is fine there.
func InitEnvironmentVariables() error {
	if os.Getenv("GO_ENV") == "production" {
		log.Info("Running in production environment")
		return nil
	}

	if err := godotenv.Load(ENV_FILENAME); err != nil {
		if os.IsNotExist(err) {
			log.Warnf("no %s file found, using process environment", ENV_FILENAME)
			return nil
		}

		return fmt.Errorf("failed to load %s file: %v", ENV_FILENAME, err)
	}

	return nil
}

func GetEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("environment variable %s not set", key)
	}

	return value, nil
}

func GetEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}
