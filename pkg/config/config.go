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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Rotation RotationConfig
	Sweep    SweepConfig
	Stats    StatsConfig
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RotationConfig tunes batch generation: per-level quotas, the shared
// acceptance window, how aggressively the pool query over-fetches, and the
// retry budgets for conflicting transactions and cursor writes.
type RotationConfig struct {
	QuotaFresher        int
	QuotaMid            int
	QuotaExpert         int
	AcceptanceWindow    time.Duration
	PoolFetchMultiplier int
	GenerationAttempts  int
	CursorRetries       int
}

// SweepConfig tunes the expiry sweep: how often it runs, how many exhausted
// batches one run may refresh, and the hard wall-clock budget for the
// refresh phase.
type SweepConfig struct {
	Interval       time.Duration
	RefreshCap     int
	RefreshTimeout time.Duration
}

// StatsConfig governs rotation-stats caching.
type StatsConfig struct {
	CacheTTL time.Duration
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
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Rotation = RotationConfig{
		QuotaFresher:        v.GetInt("ROTATION_QUOTA_FRESHER"),
		QuotaMid:            v.GetInt("ROTATION_QUOTA_MID"),
		QuotaExpert:         v.GetInt("ROTATION_QUOTA_EXPERT"),
		AcceptanceWindow:    parseDuration(v.GetString("ROTATION_ACCEPTANCE_WINDOW"), 15*time.Minute),
		PoolFetchMultiplier: v.GetInt("ROTATION_POOL_FETCH_MULTIPLIER"),
		GenerationAttempts:  v.GetInt("ROTATION_GENERATION_ATTEMPTS"),
		CursorRetries:       v.GetInt("ROTATION_CURSOR_RETRIES"),
	}

	cfg.Sweep = SweepConfig{
		Interval:       parseDuration(v.GetString("SWEEP_INTERVAL"), time.Minute),
		RefreshCap:     v.GetInt("SWEEP_REFRESH_CAP"),
		RefreshTimeout: parseDuration(v.GetString("SWEEP_REFRESH_TIMEOUT"), 60*time.Second),
	}

	cfg.Stats = StatsConfig{
		CacheTTL: parseDuration(v.GetString("STATS_CACHE_TTL"), 30*time.Second),
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
	v.SetDefault("DB_NAME", "devmatch_rotation")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ROTATION_QUOTA_FRESHER", 5)
	v.SetDefault("ROTATION_QUOTA_MID", 5)
	v.SetDefault("ROTATION_QUOTA_EXPERT", 3)
	v.SetDefault("ROTATION_ACCEPTANCE_WINDOW", "15m")
	v.SetDefault("ROTATION_POOL_FETCH_MULTIPLIER", 4)
	v.SetDefault("ROTATION_GENERATION_ATTEMPTS", 3)
	v.SetDefault("ROTATION_CURSOR_RETRIES", 2)

	v.SetDefault("SWEEP_INTERVAL", "1m")
	v.SetDefault("SWEEP_REFRESH_CAP", 5)
	v.SetDefault("SWEEP_REFRESH_TIMEOUT", "60s")

	v.SetDefault("STATS_CACHE_TTL", "30s")
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
