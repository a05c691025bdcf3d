package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Ads      AdsConfig      `mapstructure:"ads"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RequestLimit int           `mapstructure:"request_limit"`
	StaticDir    string        `mapstructure:"static_dir"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
}

type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

type AdsConfig struct {
	// PriceFloor is only applied when EnforcePriceFloor is set. The
	// historical behavior accepts any price, negatives included.
	PriceFloor        int64 `mapstructure:"price_floor"`
	EnforcePriceFloor bool  `mapstructure:"enforce_price_floor"`
}

type AdminConfig struct {
	// Token guards the /admin routes when non-empty. Empty means the
	// routes stay open, matching the original deployment.
	Token string `mapstructure:"token"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("http.port", 3000)
	viper.SetDefault("http.timeout", "10s")
	viper.SetDefault("http.request_limit", 50)
	viper.SetDefault("http.static_dir", "public")
	viper.SetDefault("database.path", "data/jam-board.db")
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("tracing.endpoint", "")
	viper.SetDefault("tracing.service_name", "jam-board")
	viper.SetDefault("tracing.environment", "development")
	viper.SetDefault("tracing.version", "dev")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("ads.price_floor", 0)
	viper.SetDefault("ads.enforce_price_floor", false)
	viper.SetDefault("admin.token", "")

	viper.AutomaticEnv()
	// Environment names kept from the original deployment.
	viper.BindEnv("database.path", "DB_FILE")
	viper.BindEnv("http.port", "PORT")
	viper.BindEnv("admin.token", "ADMIN_TOKEN")
	viper.BindEnv("redis.addr", "REDIS_ADDR")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// No config file is fine, defaults and env cover everything.
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if timeoutStr := viper.GetString("http.timeout"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, err
		}
		config.HTTP.Timeout = timeout
	}

	return &config, nil
}

func MustLoadConfig() *Config {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}
	return config
}
