package tlsroots

import (
	"crypto/tls"
	"errors"
	"fmt"
)

// Files names the PEM files of one TLS endpoint.
type Files struct {
	CertFile string
	KeyFile  string
	// CAFile verifies the peer. On a server it makes client certificates
	// mandatory; on a client it is trusted in addition to the system roots.
	CAFile     string
	ServerName string
}

// NewServerConfig returns a server config serving f's key pair through the
// returned watcher, which the caller must Stop. A non-empty f.CAFile
// requires and verifies client certificates.
func NewServerConfig(f Files, opts ...WatcherOption) (*tls.Config, *Watcher, error) {
	if f.CertFile == "" || f.KeyFile == "" {
		return nil, nil, errors.New("tlsroots: server config needs cert_file and key_file")
	}
	var clientCAs *Pool
	if f.CAFile != "" {
		clientCAs = NewEmptyPool()
		if err := clientCAs.AddCertFile(f.CAFile); err != nil {
			return nil, nil, err
		}
	}
	w, err := NewWatcher(f.CertFile, f.KeyFile, opts...)
	if err != nil {
		return nil, nil, err
	}
	cfg := &tls.Config{
		GetCertificate: w.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
	if clientCAs != nil {
		cfg.ClientCAs = clientCAs.Pool()
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg, w, nil
}

// NewClientConfig returns a client config trusting the system roots plus
// f.CAFile. When f names a key pair it is presented as a client certificate
// and reloaded through the returned watcher, which the caller must Stop; the
// watcher is nil otherwise.
func NewClientConfig(f Files, opts ...WatcherOption) (*tls.Config, *Watcher, error) {
	pool := NewPool()
	if f.CAFile != "" {
		if err := pool.AddCertFile(f.CAFile); err != nil {
			return nil, nil, err
		}
	}
	cfg := pool.ClientConfig(f.ServerName)
	if f.CertFile == "" {
		return cfg, nil, nil
	}
	w, err := NewWatcher(f.CertFile, f.KeyFile, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("tlsroots: client key pair: %w", err)
	}
	cfg.GetClientCertificate = w.GetClientCertificate
	return cfg, w, nil
}
