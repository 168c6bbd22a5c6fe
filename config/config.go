package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Storage    StorageConfig    `mapstructure:"storage"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Admin      AdminConfig      `mapstructure:"admin"`
	Bot        BotConfig        `mapstructure:"bot"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
}

// StorageConfig selects the durable key-value backend.
// Driver is one of: memory, redis, postgres, sqlite.
type StorageConfig struct {
	Driver    string `mapstructure:"driver"`
	Namespace string `mapstructure:"namespace"`
}

type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

type PostgresConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// AdminConfig describes the seed admin account and the secret admins log in with.
// SecretHash, when set, is a bcrypt hash and takes precedence over Secret.
type AdminConfig struct {
	Username   string `mapstructure:"username"`
	UniqueID   string `mapstructure:"unique_id"`
	Secret     string `mapstructure:"secret"`
	SecretHash string `mapstructure:"secret_hash"`
}

type BotConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Name     string   `mapstructure:"name"`
	Reply    string   `mapstructure:"reply"`
	Triggers []string `mapstructure:"triggers"`
}

type ModerationConfig struct {
	EnforceBans bool `mapstructure:"enforce_bans"`
}

// RateLimitConfig caps per-user actions per minute. Zero disables a rule.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	MessagesPerMinute int  `mapstructure:"messages_per_minute"`
	LoginsPerMinute   int  `mapstructure:"logins_per_minute"`
	FailOpen          bool `mapstructure:"fail_open"`
}

var ErrUnknownDriver = errors.New("unknown storage driver")

// setDefaults registers the values used when the config file omits a key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.namespace", "")

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("postgres.host", "127.0.0.1")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.dbname", "himo")
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.max_open_conns", 10)

	v.SetDefault("sqlite.path", "data/himo.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("admin.username", "Himo")
	v.SetDefault("admin.unique_id", "HIMO001")
	v.SetDefault("admin.secret", "12345678")

	v.SetDefault("bot.enabled", true)
	v.SetDefault("bot.name", "AutoBot")
	v.SetDefault("bot.reply", "Обрабатываю вашу команду автоматизации...")
	v.SetDefault("bot.triggers", []string{"/bot", "бот"})

	v.SetDefault("moderation.enforce_bans", true)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.messages_per_minute", 30)
	v.SetDefault("ratelimit.logins_per_minute", 10)
	v.SetDefault("ratelimit.fail_open", true)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	// Defaults alone always decode.
	_ = v.Unmarshal(&config)
	return &config
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HIMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the settings that would otherwise fail late at startup.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "redis", "postgres", "sqlite":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Storage.Driver)
	}
	if c.Admin.Username == "" {
		return errors.New("admin.username must not be empty")
	}
	if len(c.Admin.UniqueID) != 7 {
		return fmt.Errorf("admin.unique_id must be 7 characters, got %q", c.Admin.UniqueID)
	}
	if c.Admin.Secret == "" && c.Admin.SecretHash == "" {
		return errors.New("admin.secret or admin.secret_hash must be set")
	}
	return nil
}

// BuildDSN builds the PostgreSQL DSN
func (c PostgresConfig) BuildDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

// Key prefixes a collection key with the configured namespace.
func (c StorageConfig) Key(name string) string {
	if c.Namespace == "" {
		return name
	}
	return c.Namespace + ":" + name
}
