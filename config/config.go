package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix scopes environment overrides, e.g. RECIPE_SERVER_PORT
const envPrefix = "RECIPE"

// Config holds all service settings
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Media    MediaConfig
	Cache    CacheConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Driver      string
	Path        string
	WaitTimeout time.Duration // How long wait-for-db keeps retrying
}

// MediaConfig points at the directory uploaded images are written under
type MediaConfig struct {
	Root string
}

type CacheConfig struct {
	Type          string // "memory" or "redis"
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TokenTTL      time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.path", "./recipe_service.db")
	v.SetDefault("database.wait_timeout", time.Minute)
	v.SetDefault("media.root", "./media")
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.token_ttl", 5*time.Minute)
}

// Load reads defaults, an optional config file (RECIPE_CONFIG) and RECIPE_* env vars
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("server.port"),
		},
		Database: DatabaseConfig{
			Driver:      v.GetString("database.driver"),
			Path:        v.GetString("database.path"),
			WaitTimeout: v.GetDuration("database.wait_timeout"),
		},
		Media: MediaConfig{
			Root: v.GetString("media.root"),
		},
		Cache: CacheConfig{
			Type:          v.GetString("cache.type"),
			RedisAddr:     v.GetString("cache.redis_addr"),
			RedisPassword: v.GetString("cache.redis_password"),
			RedisDB:       v.GetInt("cache.redis_db"),
			TokenTTL:      v.GetDuration("cache.token_ttl"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	switch c.Cache.Type {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.type must be memory or redis, got %q", c.Cache.Type)
	}
	return nil
}
