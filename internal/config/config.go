// Package config loads the optional collegeload.yaml project file.
//
// The file carries connection defaults and loader tuning so operators do
// not have to repeat flags on every run. CLI flags and PG* environment
// variables always take precedence over file values.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// LoaderConfig tunes the batching behavior of a load run.
type LoaderConfig struct {
	// BatchSize is the number of rows per transaction. Zero means the
	// built-in default.
	BatchSize int `yaml:"batch_size,omitempty"`

	// OnViolation is "halt" (default) or "continue".
	OnViolation string `yaml:"on_violation,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Loader     LoaderConfig     `yaml:"loader"`
	Timeout    string           `yaml:"timeout"`
}

const ConfigFileName = "collegeload.yaml"

// Load reads collegeload.yaml from the given directory.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
