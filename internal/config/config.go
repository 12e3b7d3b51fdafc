package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures the server runtime parameters.
type Config struct {
	ListenAddress       string        `mapstructure:"listen_address"`
	AdminAddress        string        `mapstructure:"admin_address"`
	LogLevel            string        `mapstructure:"log_level"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
	Store               StoreConfig   `mapstructure:"store"`
	Uploads             UploadsConfig `mapstructure:"uploads"`
}

// StoreConfig describes where the document store keeps its data file.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// UploadsConfig describes where uploaded binaries land and the maximum
// accepted size in bytes.
type UploadsConfig struct {
	Dir     string `mapstructure:"dir"`
	MaxSize int64  `mapstructure:"max_size"`
}

const (
	defaultListenAddress       = "0.0.0.0:8080"
	defaultAdminAddress        = "127.0.0.1:9090"
	defaultLogLevel            = "info"
	defaultShutdownGracePeriod = 10 * time.Second
	defaultStorePath           = "data/yellowgram.db"
	defaultUploadsDir          = "data/uploads"
	defaultUploadsMaxSize      = 16 << 20
)

// Load reads configuration from the provided file path (if any) and the environment.
// Environment variables are prefixed with YELLOWGRAM_ and can override file values.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("YELLOWGRAM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("listen_address", defaultListenAddress)
	v.SetDefault("admin_address", defaultAdminAddress)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("shutdown_grace_period", defaultShutdownGracePeriod.String())
	v.SetDefault("store.path", defaultStorePath)
	v.SetDefault("uploads.dir", defaultUploadsDir)
	v.SetDefault("uploads.max_size", defaultUploadsMaxSize)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	// Viper leaves durations as strings; normalize them here.
	if v.IsSet("shutdown_grace_period") {
		dur, err := time.ParseDuration(v.GetString("shutdown_grace_period"))
		if err != nil {
			return Config{}, fmt.Errorf("invalid shutdown_grace_period: %w", err)
		}
		cfg.ShutdownGracePeriod = dur
	} else {
		cfg.ShutdownGracePeriod = defaultShutdownGracePeriod
	}

	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaultListenAddress
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath
	}
	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = defaultUploadsDir
	}
	if cfg.Uploads.MaxSize <= 0 {
		cfg.Uploads.MaxSize = defaultUploadsMaxSize
	}

	return cfg, nil
}
