package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/scenelink/internal/cli/config"
	"github.com/yndnr/scenelink/internal/server/config"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "CLI and server configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "cli",
				Usage: "CLI configuration",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Show the effective CLI configuration",
						Action: configCLIShow,
					},
					{
						Name:      "set",
						Usage:     "Set a CLI configuration value (server, token, output)",
						ArgsUsage: "<key> <value>",
						Action:    configCLISet,
					},
				},
			},
			{
				Name:  "server",
				Usage: "Server configuration files",
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "Show the merged server configuration with secrets masked",
						ArgsUsage: "[config-file]",
						Action:    configServerShow,
					},
					{
						Name:      "validate",
						Usage:     "Validate a server configuration file",
						ArgsUsage: "<config-file>",
						Action:    configServerValidate,
					},
				},
			},
		},
	}
}

// cliConfigView is `config cli show` output; the token is masked.
type cliConfigView struct {
	File   string `json:"file"`
	Server string `json:"server"`
	Token  string `json:"token"`
	Output string `json:"output"`
	CAFile string `json:"ca_file"`
}

func configCLIShow(c *cli.Context) error {
	s := GetSettings(c)
	token := ""
	if s.Token != "" {
		token = "***"
	}
	return render(c, cliConfigView{
		File:   s.ConfigPath,
		Server: s.Server,
		Token:  token,
		Output: s.Output,
		CAFile: s.CAFile,
	})
}

func configCLISet(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("usage: config cli set <key> <value>")
	}
	path := GetSettings(c).ConfigPath
	cfg, err := cliconfig.Load(path)
	if err != nil {
		return err
	}
	key, value := c.Args().Get(0), c.Args().Get(1)
	switch key {
	case "server":
		cfg.Server = value
	case "token":
		cfg.Token = value
	case "output":
		cfg.Output = value
	case "ca_file":
		cfg.CAFile = value
	default:
		return fmt.Errorf("unknown key %q (want server, token, output or ca_file)", key)
	}
	if err := cliconfig.Save(cfg, path); err != nil {
		return err
	}
	printf(c, "✓ %s updated in %s\n", key, path)
	return nil
}

func configServerShow(c *cli.Context) error {
	cfg, err := config.Load(c.Args().First(), nil)
	if err != nil {
		return err
	}
	return render(c, config.Flatten(config.Sanitize(cfg)))
}

func configServerValidate(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("configuration file path required")
	}
	cfg, err := config.Load(path, nil)
	if err != nil {
		printf(c, "✗ %s: %v\n", path, err)
		return cli.Exit("", 1)
	}
	printf(c, "✓ %s is valid (mode %s, endpoint %s)\n", path, cfg.Role(), cfg.Endpoint)
	return nil
}
