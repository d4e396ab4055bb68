package connector

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSecretsDir = ".vault/secrets"
	DefaultClient     = "psql"
)

type Config struct {
	Debug          bool   `env:"DEBUG"`
	SecretsDir     string `yaml:"secrets_dir" env:"CONNECT_DB_SECRETS_DIR"`
	Client         string `yaml:"client" env:"CONNECT_DB_CLIENT"`
	ExportPassword *bool  `yaml:"export_password" env:"CONNECT_DB_EXPORT_PASSWORD"`
}

// LoadConfig builds the tool configuration. Precedence: env vars over the
// yaml file over built-in defaults. The path may be empty; the tool works
// with no config file at all.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	config := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	}

	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("process envconfig: %w", err)
	}

	if config.SecretsDir == "" {
		config.SecretsDir = DefaultSecretsDir
	}
	if config.Client == "" {
		config.Client = DefaultClient
	}

	return config, nil
}

// ShouldExportPassword defaults to true, matching the behavior of handing
// PGPASSWORD to the client.
func (c *Config) ShouldExportPassword() bool {
	return c.ExportPassword == nil || *c.ExportPassword
}
