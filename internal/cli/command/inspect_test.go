package command

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/yndnr/scenelink/internal/capture"
	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/transport"
	"github.com/yndnr/scenelink/internal/wire"
)

func writeTestCapture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.cap")
	w, err := capture.Create(path)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	moved := scene.IdentityTransform()
	moved.Position = mgl32.Vec3{1, 2, 3}
	frames := [][]byte{
		wire.EncodeSnapshotFrame(scene.Message{
			Nodes: []scene.NodeSnapshot{
				{ID: 1, Name: "Root", Active: true, Transform: scene.IdentityTransform()},
				{ID: 2, ParentID: 1, Name: "Cube", Active: true, Transform: scene.IdentityTransform()},
			},
			Meshes: []scene.MeshAsset{{ID: 10, Name: "cube"}},
		}),
		wire.EncodeDeltaFrame(scene.TransformDelta{NodeID: 2, Transform: moved}),
		{7, 0, 0},
	}
	for _, f := range frames {
		if err := w.Record(transport.Inbound{Peer: "01J0PEER", Frame: f}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return path
}

func TestInspect_List(t *testing.T) {
	path := writeTestCapture(t)

	out, err := runCLI(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want session line + header + 3 rows:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "session ") || !strings.HasSuffix(lines[0], "3 frames") {
		t.Errorf("session line = %q", lines[0])
	}
	checks := []struct {
		line int
		want []string
	}{
		{2, []string{"snapshot", "nodes=2 meshes=1 images=0"}},
		{3, []string{"delta", "node=2 pos=(1, 2, 3)"}},
		{4, []string{"unknown(7)", "error:"}},
	}
	for _, c := range checks {
		for _, want := range c.want {
			if !strings.Contains(lines[c.line], want) {
				t.Errorf("line %d = %q, missing %q", c.line, lines[c.line], want)
			}
		}
	}
	if strings.Contains(out, "01J0PEER") {
		t.Error("peer column should only show with --wide")
	}
}

func TestInspect_Wide(t *testing.T) {
	out, err := runCLI(t, "--wide", "inspect", writeTestCapture(t))
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	if !strings.Contains(out, "01J0PEER") {
		t.Errorf("wide output missing peer:\n%s", out)
	}
}

func TestInspect_Frame(t *testing.T) {
	path := writeTestCapture(t)

	out, err := runCLI(t, "-o", "json", "inspect", "--frame", "0", path)
	if err != nil {
		t.Fatalf("inspect --frame 0 error = %v", err)
	}
	if !strings.Contains(out, `"Name": "Cube"`) {
		t.Errorf("decoded snapshot missing node:\n%s", out)
	}

	out, err = runCLI(t, "-o", "json", "inspect", "--frame", "1", path)
	if err != nil {
		t.Fatalf("inspect --frame 1 error = %v", err)
	}
	if !strings.Contains(out, `"NodeID": 2`) {
		t.Errorf("decoded delta missing node id:\n%s", out)
	}
}

func TestInspect_Errors(t *testing.T) {
	path := writeTestCapture(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no file", []string{"inspect"}, "capture file required"},
		{"missing file", []string{"inspect", filepath.Join(t.TempDir(), "absent.cap")}, "capture: open"},
		{"frame out of range", []string{"inspect", "--frame", "9", path}, "out of range"},
		{"undecodable frame", []string{"inspect", "--frame", "2", path}, "SL-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
