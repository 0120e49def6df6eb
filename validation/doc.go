// Package validation validates configuration and input structs using
// struct tags.
//
//	type Config struct {
//	    Renderer string `json:"renderer" validate:"omitempty,oneof=text html json"`
//	}
//	err := validation.Validate(cfg)
//
// Failures are returned as a 400 *errors.HTTPError whose detail lists the
// offending fields, so they render through the standard HTTP error
// convention when raised from a view.
package validation
