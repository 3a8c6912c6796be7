package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/liAmirali/UIFP-final-project/internal/utils"
)

type Config struct {
	DataDir    string
	JWTSecret  string
	TokenTTL   time.Duration
	LogFile    string
	SQLitePath string
}

// Load reads an optional .env file and then the EMS_* environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

func FromEnv() Config {
	dir := utils.SafeEnv("EMS_DATA_DIR", "./data")
	return Config{
		DataDir:    dir,
		JWTSecret:  utils.SafeEnv("EMS_JWT_SECRET", ""),
		TokenTTL:   time.Duration(utils.EnvInt("EMS_TOKEN_TTL_HOURS", 12)) * time.Hour,
		LogFile:    utils.SafeEnv("EMS_LOG_FILE", filepath.Join(dir, "ems.log")),
		SQLitePath: utils.SafeEnv("EMS_SQLITE_PATH", filepath.Join(dir, "ems.sqlite")),
	}
}
