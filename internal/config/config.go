package config

import (
	"os"
	"strconv"
)

// Config holds application configuration loaded from the environment
type Config struct {
	Port         string
	DBPath       string
	JWTSecret    string
	AuthRequired bool

	// Trip detection thresholds
	Detection DetectionConfig
}

// DetectionConfig holds the tunable thresholds of the trip detection engine.
// The defaults are the canonical rule set; every value can be overridden via
// environment variables.
type DetectionConfig struct {
	ConfirmationPoints int     // opposite-state samples needed beyond this count to commit a transition
	HomeRadiusKm       float64 // haversine radius around a home reference
	MinTripHours       float64 // minimum away duration for a trip
	MinCountryHours    float64 // minimum per-country aggregate to survive filtering
	MinCityHours       float64 // minimum per-city duration to survive filtering
	SamplePageSize     int     // location samples fetched per page
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/trips/trips.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	return &Config{
		Port:         port,
		DBPath:       dbPath,
		JWTSecret:    jwtSecret,
		AuthRequired: envBool("AUTH_REQUIRED", false),
		Detection: DetectionConfig{
			ConfirmationPoints: envInt("DETECTION_CONFIRMATION_POINTS", 3),
			HomeRadiusKm:       envFloat("DETECTION_HOME_RADIUS_KM", 50),
			MinTripHours:       envFloat("DETECTION_MIN_TRIP_HOURS", 24),
			MinCountryHours:    envFloat("DETECTION_MIN_COUNTRY_HOURS", 24),
			MinCityHours:       envFloat("DETECTION_MIN_CITY_HOURS", 2),
			SamplePageSize:     envInt("DETECTION_SAMPLE_PAGE_SIZE", 1000),
		},
	}
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
