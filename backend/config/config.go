package config

import (
	"fmt"

	"github.com/taskrally/taskrally-backend/taskrally"
)

// WebAppConfig carries the HTTP-facing configuration derived from the core
// config file.
type WebAppConfig struct {
	Host         string
	Port         int
	AllowOrigins string
	Debug        bool
}

func NewWebAppConfig(cfg *taskrally.Config, debug bool) *WebAppConfig {
	host := cfg.Server.Host
	if host == "" {
		host = "0.0.0.0"
	}
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	origins := cfg.Server.AllowOrigins
	if origins == "" {
		origins = "http://localhost:3000"
	}
	return &WebAppConfig{
		Host:         host,
		Port:         port,
		AllowOrigins: origins,
		Debug:        debug,
	}
}

func (c *WebAppConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
