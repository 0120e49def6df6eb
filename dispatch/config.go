package dispatch

import (
	"github.com/kbukum/errdispatch/validation"
)

// Config holds error dispatch configuration.
type Config struct {
	// Debug renders diagnostic fallback pages. Never enable in production.
	Debug bool `yaml:"debug" mapstructure:"debug" json:"debug"`
	// Renderer selects the HTTP error convention handler: text, html or json.
	Renderer string `yaml:"renderer" mapstructure:"renderer" json:"renderer" validate:"omitempty,oneof=text html json media"`
	// ExposeErrorID adds an X-Error-Id header to fallback responses.
	ExposeErrorID bool `yaml:"expose_error_id" mapstructure:"expose_error_id" json:"expose_error_id"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Renderer == "" {
		c.Renderer = RendererText
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
