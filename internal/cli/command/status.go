package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scenelink/internal/app"
	"github.com/yndnr/scenelink/internal/cli/connection"
	"github.com/yndnr/scenelink/internal/cli/output"
	"github.com/yndnr/scenelink/internal/consumer"
	"github.com/yndnr/scenelink/internal/server/httpserver/handler"
)

// ProbeCommand checks whether the server's roles are running.
func ProbeCommand() *cli.Command {
	return &cli.Command{
		Name:  "probe",
		Usage: "Check server readiness",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "wait",
				Usage: "poll until the server is ready",
			},
			&cli.DurationFlag{
				Name:  "wait-timeout",
				Usage: "give up waiting after this long",
				Value: 30 * time.Second,
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "poll interval with --wait",
				Value: 250 * time.Millisecond,
			},
		},
		Action: probe,
	}
}

func probe(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	timeout := GetSettings(c).Timeout

	if !c.Bool("wait") {
		ready, err := fetchReady(c.Context, client, timeout)
		if err != nil {
			return err
		}
		return render(c, ready)
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("wait-timeout"))
	defer cancel()

	spin := output.NewSpinner(errWriter(c), "waiting for "+client.BaseURL())
	spin.Start()
	ticker := time.NewTicker(c.Duration("interval"))
	defer ticker.Stop()
	for {
		ready, err := fetchReady(ctx, client, timeout)
		if err == nil {
			spin.Success("server ready")
			return render(c, ready)
		}
		select {
		case <-ctx.Done():
			spin.Fail("server not ready")
			return fmt.Errorf("server not ready after %s: %w", c.Duration("wait-timeout"), err)
		case <-ticker.C:
		}
	}
}

func fetchReady(ctx context.Context, client *connection.HTTPClient, timeout time.Duration) (*handler.ReadyResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var ready handler.ReadyResponse
	if err := client.GetJSON(ctx, "/ready", &ready); err != nil {
		return nil, err
	}
	return &ready, nil
}

// HealthCommand reports liveness and build information.
func HealthCommand() *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check server health",
		Action: health,
	}
}

func health(c *cli.Context) error {
	var result handler.HealthResponse
	if err := get(c, "/health", &result); err != nil {
		return err
	}
	if GetSettings(c).Format != output.FormatTable {
		return render(c, result)
	}
	printf(c, "✓ %s is %s\n", connection.BaseURL(GetSettings(c).Server), result.Status)
	printf(c, "  Version: %s (commit %s, %s)\n", result.Build.Version, result.Build.Commit, result.Build.GoVersion)
	return nil
}

// MirrorCommand shows the consumer role's mirror.
func MirrorCommand() *cli.Command {
	return &cli.Command{
		Name:   "mirror",
		Usage:  "Show the consumer mirror",
		Action: mirrorStatus,
		Subcommands: []*cli.Command{
			{
				Name:   "nodes",
				Usage:  "List mirrored nodes",
				Action: mirrorNodes,
			},
			{
				Name:      "node",
				Usage:     "Show one mirrored node",
				ArgsUsage: "<id>",
				Action:    mirrorNode,
			},
		},
	}
}

func mirrorStatus(c *cli.Context) error {
	var st app.ConsumerStatus
	if err := get(c, "/v1/mirror?nodes=false", &st); err != nil {
		return err
	}
	return render(c, st)
}

func mirrorNodes(c *cli.Context) error {
	var st app.ConsumerStatus
	if err := get(c, "/v1/mirror", &st); err != nil {
		return err
	}
	if st.Nodes == nil {
		st.Nodes = []consumer.NodeSummary{}
	}
	return render(c, st.Nodes)
}

func mirrorNode(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("node id required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 32)
	if err != nil {
		return fmt.Errorf("invalid node id %q", c.Args().First())
	}
	var node consumer.NodeSummary
	if err := get(c, fmt.Sprintf("/v1/mirror/nodes/%d", id), &node); err != nil {
		if connection.IsStatus(err, http.StatusNotFound) {
			return cli.Exit(err.Error(), 2)
		}
		return err
	}
	return render(c, node)
}

// ProducerCommand shows the producer role's sampler and session.
func ProducerCommand() *cli.Command {
	return &cli.Command{
		Name:   "producer",
		Usage:  "Show the producer status",
		Action: producerStatus,
	}
}

func producerStatus(c *cli.Context) error {
	var st app.ProducerStatus
	if err := get(c, "/v1/producer", &st); err != nil {
		return err
	}
	return render(c, st)
}

func get(c *cli.Context, path string, target any) error {
	ctx, cancel := context.WithTimeout(c.Context, GetSettings(c).Timeout)
	defer cancel()
	client, err := newClient(c)
	if err != nil {
		return err
	}
	return client.GetJSON(ctx, path, target)
}
