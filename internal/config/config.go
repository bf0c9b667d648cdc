package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Remote   RemoteConfig   `yaml:"remote"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Session  SessionConfig  `yaml:"session"`
	Cache    CacheConfig    `yaml:"cache"`
	Events   EventsConfig   `yaml:"events"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type"`
	ExposedHeaders   string `yaml:"exposed_headers"   env:"CORS_EXPOSED_HEADERS"   env-default:"X-Request-Id,Retry-After"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"   env:"SERVER_RATE_LIMIT_RPS"   env-default:"5"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" env:"SERVER_RATE_LIMIT_BURST" env-default:"20"`
	TrustProxy      bool          `yaml:"trust_proxy"      env:"SERVER_TRUST_PROXY"      env-default:"false"`
}

// RemoteConfig selects the remote backend. Both values must be present for
// remote mode; with either missing the in-memory substitute is used.
type RemoteConfig struct {
	URL string `yaml:"url" env:"REMOTE_URL"`
	Key string `yaml:"key" env:"REMOTE_KEY"`
}

// Enabled reports whether remote mode is configured.
func (c RemoteConfig) Enabled() bool {
	return strings.TrimSpace(c.URL) != "" && strings.TrimSpace(c.Key) != ""
}

// DatabaseConfig holds PostgreSQL pool settings. The DSN is RemoteConfig.URL.
type DatabaseConfig struct {
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	// StatementTimeout is sent as statement_timeout; 0 leaves the server default.
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"DATABASE_STATEMENT_TIMEOUT" env-default:"5s"`
}

// AuthConfig holds remote session token settings. Tokens are signed with
// RemoteConfig.Key.
type AuthConfig struct {
	TokenIssuer   string        `yaml:"token_issuer" env:"AUTH_TOKEN_ISSUER" env-default:"solarsite"`
	TokenTTL      time.Duration `yaml:"token_ttl"    env:"AUTH_TOKEN_TTL"    env-default:"168h"`
	BcryptCost    int           `yaml:"bcrypt_cost"  env:"AUTH_BCRYPT_COST"  env-default:"12"`
	EventsChannel string        `yaml:"events_channel" env:"AUTH_EVENTS_CHANNEL" env-default:"auth_events"`
}

// SessionConfig holds session manager settings.
type SessionConfig struct {
	ProfileTimeout time.Duration `yaml:"profile_timeout"  env:"SESSION_PROFILE_TIMEOUT"  env-default:"10s"`
	LocalStatePath string        `yaml:"local_state_path" env:"LOCAL_STATE_PATH"`
	DemoEmail      string        `yaml:"demo_email"       env:"SESSION_DEMO_EMAIL"       env-default:"admin@demo.local"`
	DemoPassword   string        `yaml:"demo_password"    env:"SESSION_DEMO_PASSWORD"    env-default:"demo1234"`
}

// StatePath returns LocalStatePath, falling back to a file under the user
// config directory.
func (c SessionConfig) StatePath() string {
	if c.LocalStatePath != "" {
		return c.LocalStatePath
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "solarsite", "state.json")
}

// CacheConfig holds list-cache settings for remote mode. An empty RedisAddr
// keeps the cache in process.
type CacheConfig struct {
	RedisAddr     string        `yaml:"redis_addr"     env:"CACHE_REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"CACHE_REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db"       env:"CACHE_REDIS_DB"       env-default:"0"`
	TTL           time.Duration `yaml:"ttl"            env:"CACHE_TTL"            env-default:"5m"`
	Prefix        string        `yaml:"prefix"         env:"CACHE_PREFIX"         env-default:"solarsite"`
}

// EventsConfig holds the RabbitMQ publisher settings. An empty AMQPURL
// disables publishing.
type EventsConfig struct {
	AMQPURL  string `yaml:"amqp_url" env:"EVENTS_AMQP_URL"`
	Exchange string `yaml:"exchange" env:"EVENTS_EXCHANGE" env-default:"solarsite.events"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
