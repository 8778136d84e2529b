package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// minSecretLength is the fail-fast floor for both signing secrets; a shorter
// secret refuses to start rather than silently running weak.
const minSecretLength = 32

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	CORS     CORSConfig
	Log      LogConfig
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

// AuthConfig holds the two independent token families plus the OTP and reset
// flow tuning. SessionSecret signs the framework-session cookie family,
// JWTSecret signs the custom bearer/cookie pair.
type AuthConfig struct {
	SessionSecret      string
	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
	Audience           []string
	OTPExpiry          time.Duration
	OTPResendCooldown  time.Duration
	ResetTokenExpiry   time.Duration
	CookieDomain       string
	CookieSecure       bool
}

// SMTPConfig configures outbound mail. When Host is empty the service logs
// messages instead of delivering them.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
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

	cfg.Auth = AuthConfig{
		SessionSecret:      v.GetString("SESSION_SECRET"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		AccessTokenExpiry:  parseDuration(v.GetString("ACCESS_TOKEN_EXPIRY"), 24*time.Hour),
		RefreshTokenExpiry: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRY"), 7*24*time.Hour),
		Issuer:             v.GetString("JWT_ISSUER"),
		Audience:           splitAndTrim(v.GetString("JWT_AUDIENCE")),
		OTPExpiry:          parseDuration(v.GetString("OTP_EXPIRY"), 15*time.Minute),
		OTPResendCooldown:  parseDuration(v.GetString("OTP_RESEND_COOLDOWN"), time.Minute),
		ResetTokenExpiry:   parseDuration(v.GetString("RESET_TOKEN_EXPIRY"), 30*time.Minute),
		CookieDomain:       v.GetString("COOKIE_DOMAIN"),
		CookieSecure:       v.GetString("ENV") == EnvProduction,
	}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Username: v.GetString("SMTP_USERNAME"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces startup invariants. Weak or missing signing secrets are a
// fatal configuration error outside development.
func (c *Config) Validate() error {
	if c.Env == EnvDevelopment {
		return nil
	}
	if len(c.Auth.SessionSecret) < minSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSecretLength)
	}
	if len(c.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "consult_api")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", "dev-only-session-secret-0123456789ab")
	v.SetDefault("JWT_SECRET", "dev-only-jwt-secret-0123456789abcdef")
	v.SetDefault("ACCESS_TOKEN_EXPIRY", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRY", "168h")
	v.SetDefault("JWT_ISSUER", "stellaredu-consult-api")
	v.SetDefault("JWT_AUDIENCE", "consult-api")
	v.SetDefault("OTP_EXPIRY", "15m")
	v.SetDefault("OTP_RESEND_COOLDOWN", "1m")
	v.SetDefault("RESET_TOKEN_EXPIRY", "30m")
	v.SetDefault("COOKIE_DOMAIN", "")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "no-reply@stellaredu.com")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
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
