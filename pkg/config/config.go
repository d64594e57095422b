package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ErrMissingSigningSecret is returned when either token signing secret is absent.
var ErrMissingSigningSecret = errors.New("config: JWT_SECRET and JWT_REFRESH_SECRET must both be set")

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	// TrustedProxies are the proxy addresses whose X-Forwarded-For is honoured.
	TrustedProxies []string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	SuperAdmin SuperAdminConfig
	Elevation  ElevationConfig
	OTP        OTPConfig
	SMTP       SMTPConfig
	Storage    StorageConfig
	Journal    JournalConfig
	Timeouts   TimeoutConfig
	Throttle   ThrottleConfig
	CORS       CORSConfig
	Log        LogConfig
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

// RedisConfig is optional; an empty Host disables Redis.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the two signing secrets. Access and refresh tokens never share a key.
type JWTConfig struct {
	Secret            string
	RefreshSecret     string
	Issuer            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

// SuperAdminConfig guards the bootstrap login.
type SuperAdminConfig struct {
	Secret          string
	AllowedIPs      []string
	RateLimit       int
	RateLimitWindow time.Duration
}

// ElevationConfig lists the passwords that override a stored admin profile at login.
type ElevationConfig struct {
	AdminSecret      string
	SuperAdminSecret string
}

type OTPConfig struct {
	TTL time.Duration
}

// SMTPConfig configures the email notifier. An empty Host selects the no-op notifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// StorageConfig configures the blob store used for company logos.
type StorageConfig struct {
	Dir             string
	PublicBaseURL   string
	DefaultLogoURL  string
	MaxLogoBytes    int64
	AllowedLogoMIME []string
}

type JournalConfig struct {
	Workers    int
	BufferSize int
}

// TimeoutConfig bounds every call to an external collaborator.
type TimeoutConfig struct {
	Store  time.Duration
	Notify time.Duration
}

// ThrottleConfig is the per-IP token bucket on public credential endpoints.
// Zero PerMinute disables it.
type ThrottleConfig struct {
	PerMinute int
	Burst     int
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.TrustedProxies = splitAndTrim(v.GetString("TRUSTED_PROXIES"))

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
		RefreshSecret:     v.GetString("JWT_REFRESH_SECRET"),
		Issuer:            v.GetString("JWT_ISSUER"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.SuperAdmin = SuperAdminConfig{
		Secret:          v.GetString("SUPER_ADMIN_SECRET"),
		AllowedIPs:      splitAndTrim(v.GetString("SUPER_ADMIN_IPS")),
		RateLimit:       v.GetInt("SUPER_ADMIN_RATE_LIMIT"),
		RateLimitWindow: parseDuration(v.GetString("SUPER_ADMIN_RATE_WINDOW"), time.Minute),
	}

	cfg.Elevation = ElevationConfig{
		AdminSecret:      v.GetString("ADMIN_ELEVATION_SECRET"),
		SuperAdminSecret: v.GetString("SUPERADMIN_ELEVATION_SECRET"),
	}

	cfg.OTP = OTPConfig{TTL: parseDuration(v.GetString("OTP_TTL"), 10*time.Minute)}

	cfg.SMTP = SMTPConfig{
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Username: v.GetString("SMTP_USERNAME"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
	}

	maxLogo := v.GetInt64("LOGO_MAX_SIZE")
	if maxLogo <= 0 {
		maxLogo = 5 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		Dir:             v.GetString("STORAGE_DIR"),
		PublicBaseURL:   v.GetString("STORAGE_PUBLIC_BASE_URL"),
		DefaultLogoURL:  v.GetString("DEFAULT_LOGO_URL"),
		MaxLogoBytes:    maxLogo,
		AllowedLogoMIME: splitAndTrim(v.GetString("LOGO_ALLOWED_MIME_TYPES")),
	}

	cfg.Journal = JournalConfig{
		Workers:    v.GetInt("JOURNAL_WORKERS"),
		BufferSize: v.GetInt("JOURNAL_BUFFER_SIZE"),
	}

	cfg.Timeouts = TimeoutConfig{
		Store:  parseDuration(v.GetString("STORE_TIMEOUT"), 5*time.Second),
		Notify: parseDuration(v.GetString("NOTIFY_TIMEOUT"), 10*time.Second),
	}

	cfg.Throttle = ThrottleConfig{
		PerMinute: v.GetInt("AUTH_THROTTLE_PER_MINUTE"),
		Burst:     v.GetInt("AUTH_THROTTLE_BURST"),
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

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" || strings.TrimSpace(c.JWT.RefreshSecret) == "" {
		return ErrMissingSigningSecret
	}
	if c.JWT.Secret == c.JWT.RefreshSecret {
		return errors.New("config: JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.SuperAdmin.RateLimit <= 0 {
		return errors.New("config: SUPER_ADMIN_RATE_LIMIT must be positive")
	}
	return nil
}

// RedisEnabled reports whether a Redis host was configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Host) != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "assa_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ISSUER", "assa-portal-api")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("SUPER_ADMIN_IPS", "127.0.0.1,::1")
	v.SetDefault("SUPER_ADMIN_RATE_LIMIT", 5)
	v.SetDefault("SUPER_ADMIN_RATE_WINDOW", "1m")

	v.SetDefault("OTP_TTL", "10m")

	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM", "no-reply@assa.local")

	v.SetDefault("STORAGE_DIR", "./uploads")
	v.SetDefault("STORAGE_PUBLIC_BASE_URL", "http://localhost:8080/uploads")
	v.SetDefault("DEFAULT_LOGO_URL", "http://localhost:8080/uploads/logos/default.png")
	v.SetDefault("LOGO_MAX_SIZE", 5*1024*1024)
	v.SetDefault("LOGO_ALLOWED_MIME_TYPES", "image/png,image/jpeg,image/gif")

	v.SetDefault("JOURNAL_WORKERS", 2)
	v.SetDefault("JOURNAL_BUFFER_SIZE", 64)

	v.SetDefault("STORE_TIMEOUT", "5s")
	v.SetDefault("NOTIFY_TIMEOUT", "10s")

	v.SetDefault("AUTH_THROTTLE_PER_MINUTE", 30)
	v.SetDefault("AUTH_THROTTLE_BURST", 10)

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
