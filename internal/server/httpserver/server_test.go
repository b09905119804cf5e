package httpserver

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/yndnr/scenelink/internal/infra/tlsroots"
	"github.com/yndnr/scenelink/internal/infra/tlsroots/tlstest"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
)

func TestServer_Run(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s := New("127.0.0.1:0", handler)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, time.Second) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestServer_RunBadAddr(t *testing.T) {
	s := New("127.0.0.1:notaport", http.NotFoundHandler())
	if err := s.Run(context.Background(), time.Second); err == nil {
		t.Error("Run() with a bad address should fail")
	}
}

func TestServer_TLS(t *testing.T) {
	dir := t.TempDir()
	ca := tlstest.NewCA(t)
	certFile, keyFile := ca.Issue(t, dir, "admin", "127.0.0.1")
	serverTLS, w, err := tlsroots.NewServerConfig(tlsroots.Files{CertFile: certFile, KeyFile: keyFile},
		tlsroots.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	s := New("127.0.0.1:0", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS == nil {
			t.Error("request did not arrive over TLS")
		}
		w.WriteHeader(http.StatusNoContent)
	}), WithTLS(serverTLS))
	if err := s.Bind(); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx, time.Second)

	clientTLS, _, err := tlsroots.NewClientConfig(tlsroots.Files{CAFile: ca.WriteCert(t, dir)})
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Transport: &http.Transport{TLSClientConfig: clientTLS}, Timeout: 5 * time.Second}
	resp, err := client.Get("https://" + s.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
