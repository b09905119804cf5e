package command

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/scenelink/internal/cli/output"
)

func TestApp(t *testing.T) {
	a := App()
	if a.Name != "scenelink-cli" {
		t.Errorf("Name = %q", a.Name)
	}

	names := make(map[string]bool)
	for _, cmd := range a.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"probe", "ping", "health", "mirror", "producer", "inspect", "config", "version"} {
		if !names[want] {
			t.Errorf("missing command %q", want)
		}
	}

	flags := make(map[string]bool)
	for _, f := range a.Flags {
		flags[f.Names()[0]] = true
	}
	for _, want := range []string{"server", "token", "output", "wide", "cli-config", "timeout"} {
		if !flags[want] {
			t.Errorf("missing flag %q", want)
		}
	}
}

func TestSettings_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cli.yaml")
	if err := os.WriteFile(path, []byte("server: http://file:5580\ntoken: filetok\noutput: yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCENELINK_TOKEN", "envtok")

	a := App()
	var got *Settings
	a.Action = func(c *cli.Context) error {
		got = GetSettings(c)
		return nil
	}
	if err := a.Run([]string{"scenelink-cli", "--cli-config", path, "-o", "json", "--wide"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got.Server != "http://file:5580" {
		t.Errorf("Server = %q, want file value", got.Server)
	}
	if got.Token != "envtok" {
		t.Errorf("Token = %q, env should override file", got.Token)
	}
	if got.Format != output.FormatJSON {
		t.Errorf("Format = %q, flag should override file", got.Format)
	}
	if !got.Wide {
		t.Error("Wide not set")
	}
}

func TestSettings_BadOutput(t *testing.T) {
	_, err := runCLI(t, "-o", "xml", "version")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("error = %v, want unknown output format", err)
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "scenelink-cli ") {
		t.Errorf("output = %q", out)
	}

	out, err = runCLI(t, "-o", "json", "version")
	if err != nil {
		t.Fatalf("version -o json error = %v", err)
	}
	if !strings.Contains(out, `"go_version"`) {
		t.Errorf("json output = %q, missing go_version", out)
	}
}
