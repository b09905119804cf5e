package tlsroots

import (
	"crypto/tls"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yndnr/scenelink/internal/infra/tlsroots/tlstest"
)

func TestNewPool(t *testing.T) {
	if NewPool().Pool() == nil {
		t.Fatal("NewPool().Pool() = nil")
	}
	if NewEmptyPool().Pool() == nil {
		t.Fatal("NewEmptyPool().Pool() = nil")
	}
}

func TestAddCertPEM(t *testing.T) {
	ca1, ca2 := tlstest.NewCA(t), tlstest.NewCA(t)
	keyBlock := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: []byte{1}})
	badCert := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte("junk")})

	tests := []struct {
		name    string
		data    []byte
		wantErr error
		anyErr  bool
	}{
		{name: "one", data: ca1.CertPEM},
		{name: "two", data: append(append([]byte{}, ca1.CertPEM...), ca2.CertPEM...)},
		{name: "skips other blocks", data: append(append([]byte{}, keyBlock...), ca1.CertPEM...)},
		{name: "empty", data: nil, wantErr: ErrNoCertsFound},
		{name: "not pem", data: []byte("hello"), wantErr: ErrNoCertsFound},
		{name: "only key", data: keyBlock, wantErr: ErrNoCertsFound},
		{name: "bad certificate", data: badCert, anyErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewEmptyPool().AddCertPEM(tt.data)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("expected an error")
				}
			case err != nil:
				t.Errorf("error = %v", err)
			}
		})
	}
}

func TestAddCertFile(t *testing.T) {
	dir := t.TempDir()
	path := tlstest.NewCA(t).WriteCert(t, dir)

	if err := NewEmptyPool().AddCertFile(path); err != nil {
		t.Fatalf("AddCertFile() error = %v", err)
	}
	if err := NewEmptyPool().AddCertFile(filepath.Join(dir, "absent.pem")); err == nil {
		t.Error("AddCertFile() on a missing file should fail")
	}

	empty := filepath.Join(dir, "empty.pem")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	err := NewEmptyPool().AddCertFile(empty)
	if !errors.Is(err, ErrNoCertsFound) || !strings.Contains(err.Error(), "empty.pem") {
		t.Errorf("AddCertFile(empty) error = %v", err)
	}
}

func TestAddCertDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pem", "b.crt", "c.cer"} {
		if err := os.WriteFile(filepath.Join(dir, name), tlstest.NewCA(t).CertPEM, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not a cert"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewEmptyPool().AddCertDir(dir); err != nil {
		t.Fatalf("AddCertDir() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "broken.pem"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewEmptyPool().AddCertDir(dir); !errors.Is(err, ErrNoCertsFound) {
		t.Errorf("AddCertDir() with a broken file error = %v", err)
	}
	if err := NewEmptyPool().AddCertDir(filepath.Join(dir, "absent")); err == nil {
		t.Error("AddCertDir() on a missing dir should fail")
	}
}

func TestClientConfig(t *testing.T) {
	pool := NewEmptyPool()
	pool.AddCert(tlstest.NewCA(t).Cert)

	cfg := pool.ClientConfig("scene.local")
	if cfg.RootCAs != pool.Pool() {
		t.Error("RootCAs not set from pool")
	}
	if cfg.ServerName != "scene.local" {
		t.Errorf("ServerName = %q", cfg.ServerName)
	}
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x, want TLS 1.2", cfg.MinVersion)
	}
}
