/**
 * @description
 * This package handles configuration management for the subtrack-service. It
 * uses the Viper library to read settings from environment variables, with an
 * optional .env file for local development, providing a centralized way to
 * manage application settings.
 */
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the subtrack-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort   string `mapstructure:"SERVER_PORT"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	ClerkJWKSURL string `mapstructure:"CLERK_JWKS_URL"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
}

// LoadConfig reads configuration from environment variables, looking for an
// optional .env file in the given path.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8086")
	viper.SetDefault("LOG_LEVEL", "info")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("CLERK_JWKS_URL")
	_ = viper.BindEnv("LOG_LEVEL")

	// The .env file is optional; deployed environments configure via env vars.
	_ = viper.ReadInConfig()

	err = viper.Unmarshal(&config)
	return
}
