package server

import "errors"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// JWTSecret verifies the HS256 bearer tokens of admin requests.
	JWTSecret string `mapstructure:"jwt_secret" default:""`
	// AdminRole is the catalog role required for admin routes.
	AdminRole string `mapstructure:"admin_role" default:"ADMIN"`
	// BodyLimitMB caps request bodies, in megabytes.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"4"`
}

// Validate checks the settings the admin surface cannot run without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("server.jwt_secret is required")
	}
	if c.AdminRole == "" {
		return errors.New("server.admin_role must not be empty")
	}
	return nil
}

// BodyLimit returns the request body limit in bytes.
func (c Config) BodyLimit() int {
	if c.BodyLimitMB <= 0 {
		return 4 * 1024 * 1024
	}
	return c.BodyLimitMB * 1024 * 1024
}
