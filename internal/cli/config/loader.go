package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Merge.
const (
	EnvServer = "SCENELINK_SERVER"
	EnvToken  = "SCENELINK_TOKEN"
	EnvOutput = "SCENELINK_OUTPUT"
	EnvCAFile = "SCENELINK_CA_FILE"
)

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".scenelink", "cli.yaml")
	}
	return filepath.Join(homeDir, ".scenelink", "cli.yaml")
}

// Load reads the CLI config. A missing file yields the defaults; fields
// absent from the file keep their default values.
func Load(path string) (*CLIConfig, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path with 0600 permissions, since it may hold a token.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Merge overlays environment variables and then non-empty flag values onto a
// copy of cfg. Recognised flag keys are "server", "token", "output",
// "ca_file", "cert_file" and "key_file"; the last two have no variable.
func Merge(cfg *CLIConfig, env map[string]string, flags map[string]string) *CLIConfig {
	out := *cfg
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&out.Server, env[EnvServer])
	set(&out.Token, env[EnvToken])
	set(&out.Output, env[EnvOutput])
	set(&out.CAFile, env[EnvCAFile])
	set(&out.Server, flags["server"])
	set(&out.Token, flags["token"])
	set(&out.Output, flags["output"])
	set(&out.CAFile, flags["ca_file"])
	set(&out.CertFile, flags["cert_file"])
	set(&out.KeyFile, flags["key_file"])
	return &out
}

// Environ returns the SCENELINK_* variables of the process environment.
func Environ() map[string]string {
	env := make(map[string]string, 4)
	for _, k := range []string{EnvServer, EnvToken, EnvOutput, EnvCAFile} {
		if v, ok := os.LookupEnv(k); ok {
			env[k] = v
		}
	}
	return env
}
