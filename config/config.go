package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging    LoggingConfig    `yaml:"logging"`
	FoodLogAPI FoodLogAPIConfig `yaml:"food_log_api"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Gallery    GalleryConfig    `yaml:"gallery"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// FoodLogAPIConfig points at the internal care-portal food-log endpoint.
// The session token is never part of the file; it comes from the
// FOODLOG_SESSION_TOKEN environment variable.
type FoodLogAPIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type MongoConfig struct {
	// Database is the database name only. The connection URI carries
	// credentials and comes from MONGO_DATABASE_URI.
	Database string `yaml:"database"`
}

type GalleryConfig struct {
	Title string `yaml:"title"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	c := defaults()

	// config.yaml is optional for these tools; defaults cover a stock run
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err == nil {
		if err := yaml.Unmarshal(data, &c); err != nil {
			panic(err)
		}
	}
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func defaults() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{Level: "info"},
		FoodLogAPI: FoodLogAPIConfig{
			BaseURL:        "https://uc-prod.ihealth-eng.com/v1/uc/food-log",
			TimeoutSeconds: 15,
		},
		Mongo:   MongoConfig{Database: "UnifiedCare"},
		Gallery: GalleryConfig{Title: "FoodLog Gallery"},
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
