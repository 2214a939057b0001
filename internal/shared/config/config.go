package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	State     StateConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	OAuth     OAuthConfig
	Frontend  FrontendConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Campaign  CampaignConfig
}

// StateBackend selects where the campaign document is persisted.
type StateBackend string

const (
	StateBackendFile     StateBackend = "file"
	StateBackendPostgres StateBackend = "postgres"
	StateBackendRedis    StateBackend = "redis"
)

type ServerConfig struct {
	Port         string
	URL          string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type StateConfig struct {
	Backend StateBackend
	File    string
	// Watch reloads the state file when it is edited outside the process.
	Watch         bool
	WatchDebounce time.Duration
	// MirrorToRedis copies every saved document to Redis as well.
	MirrorToRedis bool
	SaveTimeout   time.Duration
}

type DatabaseConfig struct {
	Host             string
	Port             string
	User             string
	Password         string
	Name             string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	// HistoryRetention is how many past documents the postgres backend keeps.
	HistoryRetention int
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     string
	Password string
	DB       int
	StateKey string
}

type AuthConfig struct {
	JWTSecret       string
	TokenExpiration time.Duration
	CookieSecure    bool
	CookieSameSite  string
	// AdminDiscordIDs are the Discord users granted the admin role.
	AdminDiscordIDs []string
}

type OAuthConfig struct {
	Discord DiscordOAuthConfig
}

type DiscordOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

type FrontendConfig struct {
	URL       string
	CORSDebug bool
}

type LoggingConfig struct {
	Level      string
	Format     string
	JSONFormat bool
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
	TrustProxy        bool
}

type CampaignConfig struct {
	// SeedPath overrides the embedded default hierarchy when set.
	SeedPath string
	// MinHonors is the smallest pool an honor draw accepts.
	MinHonors int
	// HonorMatch is "subset" or "any".
	HonorMatch string
}

var GlobalConfig *Config

func Init() error {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using system environment variables")
	}

	config, err := Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	GlobalConfig = config
	return nil
}

// Load reads the configuration from the environment without validating it.
func Load() (*Config, error) {
	config := &Config{
		Server:    loadServerConfig(),
		State:     loadStateConfig(),
		Database:  loadDatabaseConfig(),
		Redis:     loadRedisConfig(),
		Auth:      loadAuthConfig(),
		OAuth:     loadOAuthConfig(),
		Frontend:  loadFrontendConfig(),
		Logging:   loadLoggingConfig(),
		RateLimit: loadRateLimitConfig(),
		Campaign:  loadCampaignConfig(),
	}

	switch config.State.Backend {
	case StateBackendFile, StateBackendPostgres, StateBackendRedis:
	default:
		return nil, fmt.Errorf("unknown STATE_BACKEND %q", config.State.Backend)
	}

	return config, nil
}

func GetEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(GetEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(GetEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string) []string {
	raw := GetEnv(key, "")
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:         GetEnv("SERVER_PORT", "8080"),
		URL:          GetEnv("SERVER_URL", "http://localhost:8080"),
		Environment:  GetEnv("ENVIRONMENT", "development"),
		ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECONDS", 15)) * time.Second,
		WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECONDS", 15)) * time.Second,
		IdleTimeout:  time.Duration(getEnvInt("SERVER_IDLE_TIMEOUT_SECONDS", 60)) * time.Second,
	}
}

func loadStateConfig() StateConfig {
	return StateConfig{
		Backend:       StateBackend(strings.ToLower(GetEnv("STATE_BACKEND", string(StateBackendFile)))),
		File:          GetEnv("STATE_FILE", "data.json"),
		Watch:         getEnvBool("STATE_WATCH", true),
		WatchDebounce: time.Duration(getEnvInt("STATE_WATCH_DEBOUNCE_MS", 500)) * time.Millisecond,
		MirrorToRedis: getEnvBool("STATE_MIRROR_REDIS", false),
		SaveTimeout:   time.Duration(getEnvInt("STATE_SAVE_TIMEOUT_SECONDS", 5)) * time.Second,
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:             GetEnv("DB_HOST", "localhost"),
		Port:             GetEnv("DB_PORT", "5432"),
		User:             GetEnv("DB_USER", "postgres"),
		Password:         GetEnv("DB_PASSWORD", "postgres"),
		Name:             GetEnv("DB_NAME", "campaign"),
		SSLMode:          GetEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 5),
		MaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 2),
		ConnMaxLifetime:  time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		HistoryRetention: getEnvInt("DB_HISTORY_RETENTION", 50),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:  getEnvBool("REDIS_ENABLED", false),
		URL:      GetEnv("REDIS_URL", ""),
		Host:     GetEnv("REDIS_HOST", "localhost"),
		Port:     GetEnv("REDIS_PORT", "6379"),
		Password: GetEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
		StateKey: GetEnv("REDIS_STATE_KEY", "campaign:state"),
	}
}

func loadAuthConfig() AuthConfig {
	environment := GetEnv("ENVIRONMENT", "development")

	return AuthConfig{
		JWTSecret:       GetEnv("JWT_SECRET", ""),
		TokenExpiration: time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		CookieSecure:    environment == "production",
		CookieSameSite:  GetEnv("COOKIE_SAME_SITE", "lax"),
		AdminDiscordIDs: getEnvList("ADMIN_DISCORD_IDS"),
	}
}

func loadOAuthConfig() OAuthConfig {
	serverURL := GetEnv("SERVER_URL", "http://localhost:8080")

	return OAuthConfig{
		Discord: DiscordOAuthConfig{
			ClientID:     GetEnv("DISCORD_CLIENT_ID", ""),
			ClientSecret: GetEnv("DISCORD_CLIENT_SECRET", ""),
			RedirectURL:  serverURL + "/auth/discord/callback",
			Scopes:       []string{"identify"},
		},
	}
}

func loadFrontendConfig() FrontendConfig {
	return FrontendConfig{
		URL:       GetEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSDebug: getEnvBool("CORS_DEBUG", false),
	}
}

func loadLoggingConfig() LoggingConfig {
	environment := GetEnv("ENVIRONMENT", "development")

	return LoggingConfig{
		Level:      GetEnv("LOG_LEVEL", "debug"),
		Format:     GetEnv("LOG_FORMAT", "text"),
		JSONFormat: environment == "production" || GetEnv("LOG_FORMAT", "text") == "json",
	}
}

func loadRateLimitConfig() RateLimitConfig {
	requestsPerSecond, err := strconv.ParseFloat(GetEnv("RATE_LIMIT_REQUESTS_PER_SECOND", "10"), 64)
	if err != nil {
		requestsPerSecond = 10
	}

	return RateLimitConfig{
		Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
		RequestsPerSecond: requestsPerSecond,
		BurstSize:         getEnvInt("RATE_LIMIT_BURST_SIZE", 20),
		TrustProxy:        getEnvBool("RATE_LIMIT_TRUST_PROXY", false),
	}
}

func loadCampaignConfig() CampaignConfig {
	return CampaignConfig{
		SeedPath:   GetEnv("CAMPAIGN_SEED", ""),
		MinHonors:  getEnvInt("HONOR_MIN_POOL", 3),
		HonorMatch: strings.ToLower(GetEnv("HONOR_MATCH", "subset")),
	}
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	switch c.State.Backend {
	case StateBackendFile:
		if c.State.File == "" {
			return fmt.Errorf("STATE_FILE is required for the file backend")
		}
	case StateBackendPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case StateBackendRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("REDIS_ENABLED must be true for the redis backend")
		}
	}

	if c.Campaign.HonorMatch != "subset" && c.Campaign.HonorMatch != "any" {
		return fmt.Errorf("HONOR_MATCH must be subset or any")
	}

	if c.State.MirrorToRedis && !c.Redis.Enabled {
		return fmt.Errorf("REDIS_ENABLED must be true to mirror state to redis")
	}

	return nil
}

func (c *Config) DiscordOAuthConfigured() bool {
	return c.OAuth.Discord.ClientID != "" && c.OAuth.Discord.ClientSecret != ""
}

func (c *Config) IsAdminDiscordID(id string) bool {
	for _, adminID := range c.Auth.AdminDiscordIDs {
		if adminID == id {
			return true
		}
	}
	return false
}

func (c *Config) ConnectionString() string {
	return c.Database.ConnectionString()
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}
