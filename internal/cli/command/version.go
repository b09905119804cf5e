package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/scenelink/internal/cli/output"
	"github.com/yndnr/scenelink/internal/infra/buildinfo"
)

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			info := buildinfo.Get()
			if GetSettings(c).Format == output.FormatTable {
				printf(c, "scenelink-cli %s\n", buildinfo.String())
				return nil
			}
			return render(c, info)
		},
	}
}
