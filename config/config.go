package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

var configFile string

type Config struct {
	// Database
	DBDriver string `mapstructure:"database.driver"`
	DBSource string `mapstructure:"database.source"`

	// HTTP Server
	HTTPServerAddress string        `mapstructure:"server.address"`
	HTTPServerTimeout time.Duration `mapstructure:"server.timeout"`
	CorsEnabled       bool          `mapstructure:"server.cors_enabled"`
	CorsOrigins       []string      `mapstructure:"server.cors_origins"`

	// Event store
	StreamBatchSize  int  `mapstructure:"eventstore.stream_batch_size"`
	EnableMigrations bool `mapstructure:"enable_migrations"`

	// Logging
	LogLevel  string `mapstructure:"logging.level"`
	LogFormat string `mapstructure:"logging.format"`
}

func SetConfigFile(file string) {
	configFile = file
}

func LoadConfig() (Config, error) {
	var config Config

	viper.SetConfigType("yaml")

	// Set defaults
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.SetConfigName("config")
	}

	// Handle environment variables
	viper.SetEnvPrefix("LEDGER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Try app.env file if yaml not found
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			viper.SetConfigType("env")
			viper.SetConfigName("app")
			if err := viper.ReadInConfig(); err != nil {
				return config, fmt.Errorf("error loading configuration: %w", err)
			}
		} else {
			return config, fmt.Errorf("error loading configuration: %w", err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("error unmarshaling configuration: %w", err)
	}

	return config, nil
}

// Set default configuration values
func setDefaults() {
	// Database
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.source", "ledger.db")

	// HTTP Server
	viper.SetDefault("server.address", "0.0.0.0:8080")
	viper.SetDefault("server.timeout", "30s")
	viper.SetDefault("server.cors_enabled", true)
	viper.SetDefault("server.cors_origins", []string{"*"})

	// Event store
	viper.SetDefault("eventstore.stream_batch_size", 200)
	viper.SetDefault("enable_migrations", true)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
