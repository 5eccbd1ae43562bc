package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-browser/internal/logger"
)

type AppConfig struct {
	Port        string        `validate:"required,numeric"`
	HTTPTimeout time.Duration `validate:"gt=0"`

	OpenWeatherAPIKey string
	WeatherAPIKey     string
	GoogleAPIKey      string

	Geocode GeocodeConfig
	Weather WeatherConfig
	Storage StorageConfig

	// SearchLimit is the default number of gazetteer matches returned.
	SearchLimit int `validate:"gte=1,lte=100"`

	DefaultLocation DefaultLocation

	ThemeSystemDefault string `validate:"oneof=light dark"`
}

type GeocodeConfig struct {
	Language        string
	Country         string
	ResultCount     int           `validate:"gte=1,lte=100"`
	QueryTimeout    time.Duration `validate:"gt=0"`
	AdvanceDelay    time.Duration `validate:"gte=0"`
	CacheTTL        time.Duration `validate:"gt=0"`
	ReverseCacheTTL time.Duration `validate:"gt=0"`
}

type WeatherConfig struct {
	Timezone        string        `validate:"required"`
	StaleTime       time.Duration `validate:"gte=0"`
	RefreshInterval time.Duration `validate:"gte=1m"`

	// In-memory store retention.
	StoreMaxHistory int           `validate:"gte=0"` // 0 = unlimited
	StoreMaxAge     time.Duration `validate:"gte=0"` // 0 = unlimited
}

type StorageConfig struct {
	Driver    string `validate:"oneof=memory sqlite postgres redis"`
	DSN       string `validate:"required_if=Driver sqlite,required_if=Driver postgres"`
	RedisAddr string `validate:"required_if=Driver redis"`
	RedisPass string
	RedisDB   int `validate:"gte=0"`
}

// DefaultLocation is shown when the user's position is unavailable.
type DefaultLocation struct {
	Name      string  `validate:"required"`
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
}

var validate = validator.New()

// Load reads configuration from environment (and .env when present) with
// sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.L().Debug("dotenv_not_loaded", "err", err)
	}
	return FromEnv()
}

// FromEnv is Load without the .env file.
func FromEnv() (*AppConfig, error) {
	var (
		cfg  = &AppConfig{}
		errs []error
	)
	duration := func(key, def string) time.Duration {
		d, err := getenvDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}
	float := func(key string, def float64) float64 {
		f, err := getenvFloat(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return f
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.HTTPTimeout = duration("HTTP_TIMEOUT", "10s")

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	cfg.Geocode = GeocodeConfig{
		Language:        getenvDefault("GEOCODE_LANGUAGE", "ko"),
		Country:         getenvDefault("GEOCODE_COUNTRY", "KR"),
		ResultCount:     getenvInt("GEOCODE_RESULT_COUNT", 5),
		QueryTimeout:    duration("GEOCODE_QUERY_TIMEOUT", "8s"),
		AdvanceDelay:    duration("GEOCODE_ADVANCE_DELAY", "50ms"),
		CacheTTL:        duration("GEOCODE_CACHE_TTL", "30m"),
		ReverseCacheTTL: duration("REVERSE_GEOCODE_CACHE_TTL", "1h"),
	}

	cfg.Weather = WeatherConfig{
		Timezone:        getenvDefault("WEATHER_TIMEZONE", "Asia/Seoul"),
		StaleTime:       duration("WEATHER_STALE_TIME", "5m"),
		RefreshInterval: duration("WEATHER_REFRESH_INTERVAL", "1h"),
		StoreMaxHistory: getenvInt("STORE_MAX_HISTORY", 24), // a day at the hourly refresh
		StoreMaxAge:     duration("STORE_MAX_AGE", "24h"),
	}

	cfg.Storage = StorageConfig{
		Driver:    getenvDefault("STORAGE_DRIVER", "memory"),
		DSN:       getenvDefault("STORAGE_DSN", "weather-browser.db"),
		RedisAddr: getenvDefault("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPass: os.Getenv("REDIS_PASS"),
		RedisDB:   getenvInt("REDIS_DB", 0),
	}

	cfg.SearchLimit = getenvInt("SEARCH_LIMIT", 10)

	cfg.DefaultLocation = DefaultLocation{
		Name:      getenvDefault("DEFAULT_LOCATION_NAME", "서울 강남구"),
		Latitude:  float("DEFAULT_LOCATION_LAT", 37.4979),
		Longitude: float("DEFAULT_LOCATION_LON", 127.0276),
	}

	cfg.ThemeSystemDefault = getenvDefault("THEME_SYSTEM_DEFAULT", "light")

	if len(errs) > 0 {
		return nil, errs[0]
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
