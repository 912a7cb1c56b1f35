package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Sla      SlaConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level       string
	Development bool
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// SlaConfig holds the engine policy knobs. CutoverDate is the instant from
// which tickets are subject to SLA tracking; everything opened before it is
// permanently exempt.
type SlaConfig struct {
	CutoverDate            string
	DefaultPriority        string
	RiskPercentDefault     float64
	RecomputeIntervalMin   int
	DashboardCacheTTLSec   int
	SchedulerEnabled       bool
	Timezone               string
	HolidayGenerationYears int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	riskPercent, err := strconv.ParseFloat(getEnv("SLA_RISK_PERCENT_DEFAULT", "80"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SLA_RISK_PERCENT_DEFAULT: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk-sla"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Sla: SlaConfig{
			CutoverDate:            getEnv("SLA_CUTOVER_DATE", "2026-02-16"),
			DefaultPriority:        getEnv("SLA_DEFAULT_PRIORITY", "normal"),
			RiskPercentDefault:     riskPercent,
			RecomputeIntervalMin:   getEnvAsInt("SLA_RECOMPUTE_INTERVAL_MINUTES", 15),
			DashboardCacheTTLSec:   getEnvAsInt("SLA_DASHBOARD_CACHE_TTL_SECONDS", 900),
			SchedulerEnabled:       getEnvAsBool("SLA_SCHEDULER_ENABLED", true),
			Timezone:               getEnv("SLA_TIMEZONE", "America/Sao_Paulo"),
			HolidayGenerationYears: getEnvAsInt("SLA_HOLIDAY_GENERATION_YEARS", 2),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Cutover parses the cutover date in the configured timezone, midnight local.
func (s SlaConfig) Cutover() (time.Time, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid SLA_TIMEZONE: %w", err)
	}
	t, err := time.ParseInLocation("2006-01-02", s.CutoverDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid SLA_CUTOVER_DATE: %w", err)
	}
	return t, nil
}

// DashboardTTL returns the dashboard cache TTL.
func (s SlaConfig) DashboardTTL() time.Duration {
	if s.DashboardCacheTTLSec <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(s.DashboardCacheTTLSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
