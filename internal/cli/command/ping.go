package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scenelink/internal/cli/output"
	"github.com/yndnr/scenelink/internal/transport"
)

// PingResult is one handshake against a transport endpoint.
type PingResult struct {
	Seq      int           `json:"seq"`
	Endpoint string        `json:"endpoint"`
	RTT      time.Duration `json:"rtt"`
	Error    string        `json:"error,omitempty"`
}

// PingCommand completes the session handshake against a transport
// endpoint, as a producer would, and reports how long it took.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:      "ping",
		Usage:     "Handshake with a transport endpoint",
		ArgsUsage: "[endpoint]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "number of handshakes",
				Value:   1,
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "pause between handshakes",
				Value: time.Second,
			},
		},
		Action: ping,
	}
}

func ping(c *cli.Context) error {
	endpoint := transport.DefaultEndpoint
	if c.NArg() > 0 {
		endpoint = c.Args().First()
	}
	ep, err := transport.ParseEndpoint(endpoint)
	if err != nil {
		return err
	}

	count := c.Int("count")
	if count < 1 {
		count = 1
	}
	timeout := GetSettings(c).Timeout
	results := make([]PingResult, 0, count)
	failed := 0
	for i := 1; i <= count; i++ {
		if i > 1 {
			select {
			case <-c.Context.Done():
				return c.Context.Err()
			case <-time.After(c.Duration("interval")):
			}
		}
		r := PingResult{Seq: i, Endpoint: ep.String()}
		rtt, err := transport.Probe(c.Context, endpoint, timeout)
		if err != nil {
			r.Error = err.Error()
			failed++
		} else {
			r.RTT = rtt
		}
		results = append(results, r)
	}

	if GetSettings(c).Format == output.FormatTable {
		for _, r := range results {
			if r.Error != "" {
				printf(c, "✗ %s seq=%d: %s\n", r.Endpoint, r.Seq, r.Error)
				continue
			}
			printf(c, "✓ %s seq=%d handshake=%s\n", r.Endpoint, r.Seq, r.RTT.Round(time.Microsecond))
		}
	} else if err := render(c, results); err != nil {
		return err
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d handshakes failed", failed, count), 1)
	}
	return nil
}
