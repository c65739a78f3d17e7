package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv string `mapstructure:"app_env"`
	Port   int    `mapstructure:"port"`

	AlbumURL        string        `mapstructure:"album_url"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`

	// DefaultTimer is the cache TTL in seconds.
	DefaultTimer  int    `mapstructure:"default_timer"`
	CacheBackend  string `mapstructure:"cache_backend"`
	CacheCoalesce bool   `mapstructure:"cache_coalesce"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	MemcacheServers string `mapstructure:"memcache_servers"`

	LogLevel    string `mapstructure:"log_level"`
	LogEncoding string `mapstructure:"log_encoding"`
}

type LogConfig struct {
	Level       string
	Encoding    string
	Development bool
}

// Load reads the environment, optionally seeded from a dotenv file at path.
// A missing file is ignored and real environment variables win over it.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("app_env", "dev")
	v.SetDefault("port", 6000)
	v.SetDefault("album_url", "")
	v.SetDefault("upstream_timeout", "15s")
	v.SetDefault("default_timer", 3600)
	v.SetDefault("cache_backend", "redis")
	v.SetDefault("cache_coalesce", false)
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("memcache_servers", "localhost:11211")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_encoding", "console")

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !missingFile(err) {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.AlbumURL = strings.TrimSpace(cfg.AlbumURL)
	cfg.CacheBackend = strings.ToLower(strings.TrimSpace(cfg.CacheBackend))
	cfg.RedisAddr = strings.TrimSpace(cfg.RedisAddr)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("PORT must be in 1..65535, got %d", cfg.Port)
	}
	if cfg.DefaultTimer <= 0 {
		return Config{}, fmt.Errorf("DEFAULT_TIMER must be a positive number of seconds, got %d", cfg.DefaultTimer)
	}
	return cfg, nil
}

func missingFile(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}

func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.DefaultTimer) * time.Second
}

func (c Config) Memcache() []string {
	var out []string
	for _, s := range strings.Split(c.MemcacheServers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c Config) Log() LogConfig {
	return LogConfig{
		Level:       c.LogLevel,
		Encoding:    c.LogEncoding,
		Development: strings.EqualFold(c.AppEnv, "dev"),
	}
}
