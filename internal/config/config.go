package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains runtime configuration required by the gateway.
// Every option has a default; a missing config file is not an error.
type Config struct {
	Server struct {
		Port            int           `mapstructure:"port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`

	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		// Topics maps event categories to destination topics.
		Topics map[string]string `mapstructure:"topics"`
	} `mapstructure:"kafka"`

	Jaeger struct {
		Endpoint string `mapstructure:"endpoint"`
	} `mapstructure:"jaeger"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Categories the gateway ships routing defaults for. Additional
// categories are added by configuring kafka.topics.<name>.
var knownCategories = []string{
	"activity",
	"heart_rate",
	"sleep",
	"nutrition",
	"weight",
	"mood",
	"hydration",
	"meditation",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	for _, category := range knownCategories {
		v.SetDefault("kafka.topics."+category, "health."+category+".raw")
	}
	v.SetDefault("jaeger.endpoint", "http://localhost:4318")
	v.SetDefault("log.level", "info")
}

// Load reads config.yaml from the working directory or ./config, merges
// GATEWAY_* environment overrides, and falls back to defaults for every
// key. Returns the config plus whether a config file was found, so the
// caller can log the fallback.
func Load() (*Config, bool, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvPrefix("GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		// Config file not found; defaults and env vars apply.
		fileFound = false
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fileFound, fmt.Errorf("unable to decode config: %w", err)
	}

	return &cfg, fileFound, nil
}
