package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/SebastianObert/AirCare/internal/logger"
)

// Config holds the application configuration
type Config struct {
	OpenWeatherAPIKey     string
	OpenWeatherBaseURL    string
	OpenWeatherGeoBaseURL string
	WeatherIconBaseURL    string

	MongoURI    string
	MongoAuthDB string
	DBName      string

	CollectionUsers          string
	CollectionHistory        string
	CollectionLocations      string
	CollectionNotifications  string
	CollectionAirQualityGrid string

	JWTSecret string

	HTTPPort        string
	RefreshInterval time.Duration
	WorkerCount     int

	HealthModelPath string
}

// Load reads the .env file and loads the configuration
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// .env is optional in deployment, env vars may come from the runtime
		logger.Info("No .env file loaded: %v", err)
	}

	return &Config{
		OpenWeatherAPIKey:     os.Getenv("OPENWEATHER_API_KEY"),
		OpenWeatherBaseURL:    getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		OpenWeatherGeoBaseURL: getenvDefault("OPENWEATHER_GEO_BASE_URL", "https://api.openweathermap.org/geo/1.0"),
		WeatherIconBaseURL:    getenvDefault("WEATHER_ICON_BASE_URL", "https://openweathermap.org/img/wn"),

		MongoURI:    getMongoURI(),
		MongoAuthDB: os.Getenv("MONGO_AUTH_DB"),
		DBName:      getenvDefault("DB_NAME", "aircare"),

		CollectionUsers:          getenvDefault("COLLECTION_USERS", "users"),
		CollectionHistory:        getenvDefault("COLLECTION_HISTORY", "history"),
		CollectionLocations:      getenvDefault("COLLECTION_LOCATIONS", "saved_locations"),
		CollectionNotifications:  getenvDefault("COLLECTION_NOTIFICATIONS", "notifications"),
		CollectionAirQualityGrid: getenvDefault("COLLECTION_AQ_GRID", "air_quality_grid"),

		JWTSecret: getenvDefault("JWT_SECRET", "dev-secret"),

		HTTPPort:        getenvDefault("HTTP_PORT", "8080"),
		RefreshInterval: getenvDuration("REFRESH_INTERVAL", 30*time.Minute),
		WorkerCount:     getenvInt("WORKER_COUNT", 5),

		HealthModelPath: os.Getenv("HEALTH_MODEL_PATH"),
	}
}

// getMongoURI constructs the MongoDB URI from environment variables
func getMongoURI() string {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		return uri
	}

	host := getenvDefault("MONGO_HOST", "localhost")
	port := getenvDefault("MONGO_PORT", "27017")
	user := os.Getenv("MONGO_USER")
	pass := os.Getenv("MONGO_PASS")

	if user == "" {
		return "mongodb://" + host + ":" + port
	}
	return "mongodb://" + user + ":" + pass + "@" + host + ":" + port
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
