package config

import (
	"github.com/vietddude/faultguard/internal/core/domain"
	redisclient "github.com/vietddude/faultguard/internal/infra/redis"
	"github.com/vietddude/faultguard/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server      ServerConfig       `yaml:"server"`
	Cascade     CascadeConfig      `yaml:"cascade"`
	Controllers []ControllerConfig `yaml:"controllers"`
	Upstream    UpstreamConfig     `yaml:"upstream"`
	Redis       redisclient.Config `yaml:"redis"`
	Logging     LoggingConfig      `yaml:"logging"`
	Database    postgres.Config    `yaml:"database"`
}

// ServerConfig holds status server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// CascadeConfig holds cascade guard settings.
type CascadeConfig struct {
	MaxCascadingErrors int `yaml:"max_cascading_errors"`
}

// UpstreamConfig points at the hosted AI endpoint probed for
// connectivity diagnostics. Empty disables the probe.
type UpstreamConfig struct {
	HealthEndpoint string `yaml:"health_endpoint"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ControllerConfig declares one boundary controller. Zero values fall
// back to the domain's policy defaults.
type ControllerConfig struct {
	ID              string             `yaml:"id"`
	Domain          domain.FaultDomain `yaml:"domain"`
	MaxAttempts     uint               `yaml:"max_attempts"`
	BaseDelayMillis uint               `yaml:"base_delay_ms"`
	MaxDelayMillis  uint               `yaml:"max_delay_ms"`
}
