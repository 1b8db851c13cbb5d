package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/vietddude/faultguard/internal/cascade"
	"github.com/vietddude/faultguard/internal/core/domain"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Cascade.MaxCascadingErrors == 0 {
		cfg.Cascade.MaxCascadingErrors = cascade.DefaultCeiling
	}

	if len(cfg.Controllers) == 0 {
		cfg.Controllers = defaultControllers()
	}
	for i := range cfg.Controllers {
		if cfg.Controllers[i].ID == "" {
			cfg.Controllers[i].ID = string(cfg.Controllers[i].Domain)
		}
	}

	return &cfg, nil
}

// defaultControllers declares one controller per fault domain.
func defaultControllers() []ControllerConfig {
	domains := []domain.FaultDomain{
		domain.DomainDialogue,
		domain.DomainRemoteAPI,
		domain.DomainStreaming,
		domain.DomainPersistence,
		domain.DomainFileTransfer,
	}
	out := make([]ControllerConfig, len(domains))
	for i, d := range domains {
		out[i] = ControllerConfig{ID: string(d), Domain: d}
	}
	return out
}
