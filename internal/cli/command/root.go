package command

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scenelink/internal/cli/config"
	"github.com/yndnr/scenelink/internal/cli/connection"
	"github.com/yndnr/scenelink/internal/cli/output"
	"github.com/yndnr/scenelink/internal/infra/buildinfo"
	"github.com/yndnr/scenelink/internal/infra/tlsroots"
)

const settingsKey = "settings"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "scenelink-cli",
		Usage:   "Inspect scenelink-server instances and capture files",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ProbeCommand(),
			PingCommand(),
			HealthCommand(),
			MirrorCommand(),
			ProducerCommand(),
			InspectCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before: loadSettings,
	}
}

// globalFlags returns the global CLI flags. They have no defaults of their
// own so that unset flags leave the config file and environment in charge.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "admin API address (default " + config.DefaultServer + ")",
		},
		&cli.StringFlag{
			Name:  "token",
			Usage: "admin bearer token",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "PEM file of extra CAs trusted for an https admin server",
		},
		&cli.StringFlag{
			Name:  "cert-file",
			Usage: "client certificate for an admin server that requires one",
		},
		&cli.StringFlag{
			Name:  "key-file",
			Usage: "key of --cert-file",
		},
		&cli.StringFlag{
			Name:  "cli-config",
			Usage: "CLI config file",
			Value: config.DefaultConfigPath(),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout",
			Value: connection.DefaultTimeout,
		},
	}
}

// Settings is the resolved CLI configuration plus per-invocation flags.
type Settings struct {
	config.CLIConfig
	ConfigPath string
	Format     output.Format
	Wide       bool
	Timeout    time.Duration
}

// loadSettings merges the CLI config file, SCENELINK_* variables and the
// global flags, in increasing priority.
func loadSettings(c *cli.Context) error {
	path := c.String("cli-config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = config.Merge(cfg, config.Environ(), map[string]string{
		"server":    c.String("server"),
		"token":     c.String("token"),
		"output":    c.String("output"),
		"ca_file":   c.String("ca-file"),
		"cert_file": c.String("cert-file"),
		"key_file":  c.String("key-file"),
	})
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[settingsKey] = &Settings{
		CLIConfig:  *cfg,
		ConfigPath: path,
		Format:     format,
		Wide:       c.Bool("wide"),
		Timeout:    c.Duration("timeout"),
	}
	return nil
}

// GetSettings returns the settings resolved by the app's Before hook.
func GetSettings(c *cli.Context) *Settings {
	if s, ok := c.App.Metadata[settingsKey].(*Settings); ok {
		return s
	}
	return &Settings{CLIConfig: *config.Default(), Format: output.FormatTable, Timeout: connection.DefaultTimeout}
}

// newClient returns an admin API client for the resolved settings.
func newClient(c *cli.Context) (*connection.HTTPClient, error) {
	s := GetSettings(c)
	if s.CAFile == "" && s.CertFile == "" {
		return connection.NewHTTPClient(s.Server, s.Token), nil
	}
	if (s.CertFile == "") != (s.KeyFile == "") {
		return nil, errors.New("--cert-file and --key-file must be set together")
	}
	// The CLI exits long before a rotation matters; the watcher is not
	// started.
	tlsCfg, _, err := tlsroots.NewClientConfig(tlsroots.Files{
		CAFile:   s.CAFile,
		CertFile: s.CertFile,
		KeyFile:  s.KeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("client tls: %w", err)
	}
	return connection.NewHTTPClient(s.Server, s.Token, connection.WithTLSConfig(tlsCfg)), nil
}

// render writes data in the selected output format.
func render(c *cli.Context, data any) error {
	s := GetSettings(c)
	return output.NewFormatter(s.Format, s.Wide).Format(c.App.Writer, data)
}

// printf writes to the app's writer.
func printf(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.Writer, format, args...)
}

// errWriter returns the writer for progress output.
func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return io.Discard
}
