package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Geocoder   GeocoderConfig   `yaml:"geocoder"`
	App        AppConfig        `yaml:"app"`
}

type DatabaseConfig struct {
	// Путь к файлу SQLite; ":memory:" для тестов
	Path string `yaml:"path"`
}

type ClassifierConfig struct {
	// API-ключ Gemini; пустой ключ включает эвристический fallback
	ApiKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

type GeocoderConfig struct {
	UserAgent string `yaml:"userAgent"`
	// Ключ Google Maps; при наличии используется вместо Nominatim
	GoogleApiKey string `yaml:"googleApiKey"`
}

type AppConfig struct {
	// Страна «домашних» обращений
	DomesticCountry string `yaml:"domesticCountry"`
	// Каталог с данными (CSV-выгрузки, images/ для вложений)
	DataDir string `yaml:"dataDir"`
	// Количество воркеров пакетной обработки
	Workers int `yaml:"workers"`
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func Load() (*Config, error) {
	// .env не обязателен: в контейнере переменные приходят из окружения
	_ = godotenv.Load()

	workers := 1
	if w, err := strconv.Atoi(os.Getenv("WORKERS")); err == nil && w > 0 {
		workers = w
	}

	return &Config{
		Database: DatabaseConfig{
			Path: getEnvOrDefault("DATABASE_PATH", "router.db"),
		},
		Classifier: ClassifierConfig{
			ApiKey: os.Getenv("GEMINI_API_KEY"),
			Model:  getEnvOrDefault("CLASSIFIER_MODEL", "googleai/gemini-2.5-flash"),
		},
		Geocoder: GeocoderConfig{
			UserAgent:    getEnvOrDefault("GEOCODER_USER_AGENT", "fire-routing-engine"),
			GoogleApiKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		},
		App: AppConfig{
			DomesticCountry: getEnvOrDefault("DOMESTIC_COUNTRY", "Казахстан"),
			DataDir:         getEnvOrDefault("DATA_DIR", "data"),
			Workers:         workers,
		},
	}, nil
}
