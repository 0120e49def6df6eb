package server

import (
	"time"

	"github.com/kbukum/errdispatch/validation"
)

// Config holds HTTP server configuration.
type Config struct {
	Host         string `yaml:"host" mapstructure:"host" json:"host"`
	Port         int    `yaml:"port" mapstructure:"port" json:"port" validate:"gte=0,lte=65535"`
	ReadTimeout  int    `yaml:"read_timeout" mapstructure:"read_timeout" json:"read_timeout" validate:"gte=0"`    // seconds
	WriteTimeout int    `yaml:"write_timeout" mapstructure:"write_timeout" json:"write_timeout" validate:"gte=0"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout" validate:"gte=0"`    // seconds
	// ShutdownTimeout bounds graceful shutdown, in seconds.
	ShutdownTimeout int `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" json:"shutdown_timeout" validate:"gte=0"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
