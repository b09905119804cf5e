package tlsroots

import (
	"crypto/tls"
	"io"
	"testing"

	"github.com/yndnr/scenelink/internal/infra/tlsroots/tlstest"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
)

// handshake runs one TLS exchange over a loopback listener and returns the
// client-side error.
func handshake(t *testing.T, server, client *tls.Config) error {
	t.Helper()
	ln, err := tls.Listen("tcp", "127.0.0.1:0", server)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		_ = c.(*tls.Conn).Handshake()
		_, _ = c.Write([]byte("ok"))
	}()

	c, err := tls.Dial("tcp", ln.Addr().String(), client)
	if err != nil {
		return err
	}
	defer c.Close()
	buf := make([]byte, 2)
	_, err = io.ReadFull(c, buf)
	return err
}

func TestServerClient(t *testing.T) {
	dir := t.TempDir()
	ca := tlstest.NewCA(t)
	caFile := ca.WriteCert(t, dir)
	serverCert, serverKey := ca.Issue(t, dir, "server", "127.0.0.1")
	clientCert, clientKey := ca.Issue(t, dir, "client")
	nop := WithLogger(logger.Nop())

	t.Run("server auth", func(t *testing.T) {
		srv, sw, err := NewServerConfig(Files{CertFile: serverCert, KeyFile: serverKey}, nop)
		if err != nil {
			t.Fatalf("NewServerConfig() error = %v", err)
		}
		defer sw.Stop()
		cli, cw, err := NewClientConfig(Files{CAFile: caFile}, nop)
		if err != nil {
			t.Fatalf("NewClientConfig() error = %v", err)
		}
		if cw != nil {
			t.Error("client watcher should be nil without a key pair")
		}
		if err := handshake(t, srv, cli); err != nil {
			t.Errorf("handshake error = %v", err)
		}
	})

	t.Run("untrusted server", func(t *testing.T) {
		srv, sw, err := NewServerConfig(Files{CertFile: serverCert, KeyFile: serverKey}, nop)
		if err != nil {
			t.Fatalf("NewServerConfig() error = %v", err)
		}
		defer sw.Stop()
		cli, _, err := NewClientConfig(Files{}, nop)
		if err != nil {
			t.Fatalf("NewClientConfig() error = %v", err)
		}
		if err := handshake(t, srv, cli); err == nil {
			t.Error("handshake with an unknown CA should fail")
		}
	})

	t.Run("mutual", func(t *testing.T) {
		srv, sw, err := NewServerConfig(Files{CertFile: serverCert, KeyFile: serverKey, CAFile: caFile}, nop)
		if err != nil {
			t.Fatalf("NewServerConfig() error = %v", err)
		}
		defer sw.Stop()
		if srv.ClientAuth != tls.RequireAndVerifyClientCert {
			t.Errorf("ClientAuth = %v", srv.ClientAuth)
		}

		cli, cw, err := NewClientConfig(Files{CAFile: caFile, CertFile: clientCert, KeyFile: clientKey}, nop)
		if err != nil {
			t.Fatalf("NewClientConfig() error = %v", err)
		}
		defer cw.Stop()
		if err := handshake(t, srv, cli); err != nil {
			t.Errorf("mutual handshake error = %v", err)
		}

		anon, _, _ := NewClientConfig(Files{CAFile: caFile}, nop)
		if err := handshake(t, srv, anon); err == nil {
			t.Error("handshake without a client certificate should fail")
		}
	})
}

func TestNewServerConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	certFile, keyFile := tlstest.NewCA(t).Issue(t, dir, "server", "127.0.0.1")

	if _, _, err := NewServerConfig(Files{CertFile: certFile}); err == nil {
		t.Error("missing key_file should fail")
	}
	if _, _, err := NewServerConfig(Files{CertFile: certFile, KeyFile: keyFile, CAFile: dir + "/absent.pem"}); err == nil {
		t.Error("missing client CA should fail")
	}
	if _, _, err := NewClientConfig(Files{CAFile: dir + "/absent.pem"}); err == nil {
		t.Error("missing CA should fail")
	}
}
