package config

import (
	"fmt"

	"github.com/kbukum/errdispatch/dispatch"
	"github.com/kbukum/errdispatch/logger"
	"github.com/kbukum/errdispatch/observability"
	"github.com/kbukum/errdispatch/server"
)

// Environments accepted by ServiceConfig.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// ServiceConfig is the configuration of an errdispatch service. Projects
// extend it by embedding:
//
//	type GameConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    StartingLives int `yaml:"starting_lives" mapstructure:"starting_lives"`
//	}
type ServiceConfig struct {
	Name        string               `yaml:"name" mapstructure:"name"`
	Environment string               `yaml:"environment" mapstructure:"environment"`
	Version     string               `yaml:"version" mapstructure:"version"`
	Debug       bool                 `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config        `yaml:"logging" mapstructure:"logging"`
	Errors      dispatch.Config      `yaml:"errors" mapstructure:"errors"`
	Server      server.Config        `yaml:"server" mapstructure:"server"`
	Tracing     observability.Config `yaml:"tracing" mapstructure:"tracing"`
}

// GetServiceConfig returns the base ServiceConfig. It is promoted through
// embedding.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values. The service-wide debug flag turns on
// diagnostic error pages; development implies debug.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Environment == EnvDevelopment {
		c.Debug = true
	}
	if c.Debug {
		c.Errors.Debug = true
	}
	c.Logging.ApplyDefaults()
	c.Errors.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = c.Version
	}
	c.Tracing.ApplyDefaults(c.Name)
}

// Validate validates the configuration. Diagnostic error pages are rejected
// in production.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	switch c.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if c.Environment == EnvProduction && c.Errors.Debug {
		return fmt.Errorf("config.errors.debug must be false in production")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Errors.Validate(); err != nil {
		return fmt.Errorf("config.errors: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Tracing.Validate(); err != nil {
		return fmt.Errorf("config.tracing: %w", err)
	}
	return nil
}
