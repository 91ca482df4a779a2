package server

import "fmt"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API. Empty disables authentication.
	ApiKey string `mapstructure:"api_key" default:""`
	// TimeoutSeconds bounds a single synchronization request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"120"`
}

// Address returns the listen address for the configured port.
func (c Config) Address() string {
	return ":" + c.Port
}

// Validate checks that the server settings are usable.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("server timeout must not be negative, got %d", c.TimeoutSeconds)
	}
	return nil
}
