package tlsroots

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/scenelink/internal/infra/tlsroots/tlstest"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
)

func TestNewWatcher(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := tlstest.NewCA(t).Issue(t, dir, "server", "127.0.0.1")

	w, err := NewWatcher(certFile, keyFile, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	cert, _ := w.GetCertificate(nil)
	if cert == nil {
		t.Fatal("GetCertificate() = nil")
	}
	client, _ := w.GetClientCertificate(nil)
	if client != cert {
		t.Error("GetClientCertificate() should return the same pair")
	}
	if w.Reloads() != 1 {
		t.Errorf("Reloads() = %d, want 1", w.Reloads())
	}
}

func TestNewWatcher_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.pem")
	if err := os.WriteFile(bad, []byte("invalid"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewWatcher(bad, bad); err == nil {
		t.Error("NewWatcher() with invalid PEM should fail")
	}
	if _, err := NewWatcher(filepath.Join(dir, "a.crt"), filepath.Join(dir, "a.key")); err == nil {
		t.Error("NewWatcher() with missing files should fail")
	}
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	ca := tlstest.NewCA(t)
	certFile, keyFile := ca.Issue(t, dir, "server", "127.0.0.1")

	w, err := NewWatcher(certFile, keyFile, WithLogger(logger.Nop()), WithDebounce(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()
	if err := w.StartAsync(); err != nil {
		t.Fatalf("StartAsync() error = %v", err)
	}

	before, _ := w.GetCertificate(nil)
	// Re-issuing under the same name rewrites both files.
	ca.Issue(t, dir, "server", "127.0.0.1")

	deadline := time.Now().Add(5 * time.Second)
	for w.Reloads() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("certificate was not reloaded")
		}
		time.Sleep(10 * time.Millisecond)
	}
	after, _ := w.GetCertificate(nil)
	if bytes.Equal(before.Certificate[0], after.Certificate[0]) {
		t.Error("reloaded certificate is unchanged")
	}
}

func TestWatcher_BadReloadKeepsPair(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := tlstest.NewCA(t).Issue(t, dir, "server", "127.0.0.1")

	w, err := NewWatcher(certFile, keyFile, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(certFile, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.reload(); err == nil {
		t.Fatal("reload() of garbage should fail")
	}
	if cert, _ := w.GetCertificate(nil); cert == nil {
		t.Error("previous pair lost after failed reload")
	}
}

func TestWatcher_StopTwice(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := tlstest.NewCA(t).Issue(t, dir, "server", "127.0.0.1")

	w, err := NewWatcher(certFile, keyFile, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.StartAsync(); err != nil {
		t.Fatalf("StartAsync() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}
