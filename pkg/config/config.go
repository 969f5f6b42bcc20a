package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Analytics  AnalyticsConfig
	Validation ValidationConfig
	Reports    ReportsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AnalyticsConfig governs feature flagging and cache behaviour for the
// workload analytics endpoints.
type AnalyticsConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ValidationConfig exposes the work-log detector thresholds as deployment
// policy rather than hard-coded literals.
type ValidationConfig struct {
	MaxSessionHours    float64
	DayHoursHigh       float64
	DayHoursMedium     float64
	RepeatedPatternMin int
	ConsecutiveRunMin  int
	AnomalyMinSamples  int
	IQRMultiplier      float64
}

// ReportsConfig configures asynchronous export generation.
type ReportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Analytics = AnalyticsConfig{
		Enabled:  v.GetBool("ENABLE_ANALYTICS"),
		CacheTTL: parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Validation = ValidationConfig{
		MaxSessionHours:    v.GetFloat64("VALIDATION_MAX_SESSION_HOURS"),
		DayHoursHigh:       v.GetFloat64("VALIDATION_DAY_HOURS_HIGH"),
		DayHoursMedium:     v.GetFloat64("VALIDATION_DAY_HOURS_MEDIUM"),
		RepeatedPatternMin: v.GetInt("VALIDATION_REPEATED_PATTERN_MIN"),
		ConsecutiveRunMin:  v.GetInt("VALIDATION_CONSECUTIVE_RUN_MIN"),
		AnomalyMinSamples:  v.GetInt("VALIDATION_ANOMALY_MIN_SAMPLES"),
		IQRMultiplier:      v.GetFloat64("VALIDATION_IQR_MULTIPLIER"),
	}

	cfg.Reports = ReportsConfig{
		Enabled:           v.GetBool("ENABLE_REPORTS"),
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "faculty_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_ANALYTICS", false)
	v.SetDefault("ANALYTICS_CACHE_TTL", "10m")

	v.SetDefault("VALIDATION_MAX_SESSION_HOURS", 12)
	v.SetDefault("VALIDATION_DAY_HOURS_HIGH", 24)
	v.SetDefault("VALIDATION_DAY_HOURS_MEDIUM", 16)
	v.SetDefault("VALIDATION_REPEATED_PATTERN_MIN", 5)
	v.SetDefault("VALIDATION_CONSECUTIVE_RUN_MIN", 7)
	v.SetDefault("VALIDATION_ANOMALY_MIN_SAMPLES", 10)
	v.SetDefault("VALIDATION_IQR_MULTIPLIER", 1.5)

	v.SetDefault("ENABLE_REPORTS", false)
	v.SetDefault("REPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
