package config

// Default values.
const (
	DefaultServer = "http://127.0.0.1:5580"
	DefaultOutput = "table"
)

// CLIConfig is the configuration for scenelink-cli.
type CLIConfig struct {
	Server string `yaml:"server"`
	Token  string `yaml:"token,omitempty"`
	Output string `yaml:"output"` // table, json, yaml
	// CAFile is trusted in addition to the system roots for https servers.
	CAFile string `yaml:"ca_file,omitempty"`
	// CertFile and KeyFile are presented to servers that require client
	// certificates.
	CertFile string `yaml:"cert_file,omitempty"`
	KeyFile  string `yaml:"key_file,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server: DefaultServer,
		Output: DefaultOutput,
	}
}
