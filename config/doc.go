// Package config loads service configuration with Viper.
//
// LoadConfig reads a YAML file (found in cmd/<service>/ or config/ unless
// given explicitly), loads a .env file into the environment with godotenv,
// and lets environment variables override file values. Underscores in
// variable names map onto nested keys, so ERRORS_RENDERER sets
// errors.renderer.
//
// # Usage
//
//	var cfg config.ServiceConfig
//	if err := config.LoadConfig("gameserver", &cfg, config.WithEnvPrefix("GAMESERVER")); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
