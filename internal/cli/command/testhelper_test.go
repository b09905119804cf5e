package command

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scenelink/internal/app"
	"github.com/yndnr/scenelink/internal/consumer"
	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/producer"
	"github.com/yndnr/scenelink/internal/server/httpserver"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
)

// fakeRoles backs a real admin router in command tests.
type fakeRoles struct {
	// readyAfter is the number of Ready calls that report false first.
	readyAfter int32
	calls      atomic.Int32
	consumer   *app.ConsumerStatus
	producer   *app.ProducerStatus
}

func (f *fakeRoles) Ready() bool { return f.calls.Add(1) > f.readyAfter }

func (f *fakeRoles) ConsumerStatus() (app.ConsumerStatus, error) {
	if f.consumer == nil {
		return app.ConsumerStatus{}, scene.ErrRoleDisabled.WithDetails("server")
	}
	return *f.consumer, nil
}

func (f *fakeRoles) ProducerStatus() (app.ProducerStatus, error) {
	if f.producer == nil {
		return app.ProducerStatus{}, scene.ErrRoleDisabled.WithDetails("client")
	}
	return *f.producer, nil
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{
		consumer: &app.ConsumerStatus{
			Status: consumer.Status{
				Summary: consumer.Summary{
					Nodes: []consumer.NodeSummary{
						{ID: 1, Name: "Root", Active: true},
						{ID: 2, Name: "Cube", ParentID: 1, Active: true, MeshID: 10, Shader: "Standard"},
					},
					Meshes:   1,
					Messages: 12,
				},
				Peer:  "01J0000000000000000000PEER",
				Ticks: 40,
			},
			Endpoint: "tcp://127.0.0.1:5556",
			Peers:    1,
		},
		producer: &app.ProducerStatus{
			Status:    producer.Status{Ticks: 7, Nodes: 2, MeshesSent: 1},
			Endpoint:  "tcp://127.0.0.1:5556",
			Connected: true,
			Sessions:  1,
		},
	}
}

// startAdmin serves roles through the production admin router.
func startAdmin(t *testing.T, roles *fakeRoles, token string) string {
	t.Helper()
	srv := httptest.NewServer(httpserver.NewRouter(httpserver.RouterConfig{
		Roles:  roles,
		Logger: logger.Nop(),
		Token:  token,
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

// startAdminTLS is startAdmin over HTTPS with httptest's self-signed
// certificate.
func startAdminTLS(t *testing.T, roles *fakeRoles) *httptest.Server {
	t.Helper()
	srv := httptest.NewTLSServer(httpserver.NewRouter(httpserver.RouterConfig{
		Roles:  roles,
		Logger: logger.Nop(),
	}))
	t.Cleanup(srv.Close)
	return srv
}

// runCLI runs the CLI with an isolated config file and captured output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := App()
	var out, errOut bytes.Buffer
	a.Writer = &out
	a.ErrWriter = &errOut
	a.ExitErrHandler = func(*cli.Context, error) {}

	argv := []string{"scenelink-cli", "--cli-config", filepath.Join(t.TempDir(), "cli.yaml")}
	err := a.Run(append(argv, args...))
	return out.String(), err
}
