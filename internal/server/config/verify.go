package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/yndnr/scenelink/internal/transport"
)

// Verify validates the configuration.
func Verify(cfg *ScenelinkConfig) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if _, err := ParseRole(cfg.Mode); err != nil {
		return err
	}
	if _, err := transport.ParseEndpoint(cfg.Endpoint); err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	if err := verifyQueue(&cfg.Queue); err != nil {
		return err
	}
	if err := verifyTransport(&cfg.Transport); err != nil {
		return err
	}
	if cfg.Tick.Rate <= 0 || cfg.Tick.Rate > 1000 {
		return fmt.Errorf("tick.rate must be in (0, 1000], got %v", cfg.Tick.Rate)
	}
	if cfg.Scene.ReadbackDelay < 0 {
		return errors.New("scene.readback_delay must not be negative")
	}
	if cfg.Admin.Addr != "" {
		if _, _, err := net.SplitHostPort(cfg.Admin.Addr); err != nil {
			return fmt.Errorf("admin.addr: %w", err)
		}
		if cfg.Admin.RateLimit < 0 || cfg.Admin.RateBurst < 0 {
			return errors.New("admin.rate_limit and admin.rate_burst must not be negative")
		}
		if t := cfg.Admin.TLS; (t.CertFile == "") != (t.KeyFile == "") {
			return errors.New("admin.tls.cert_file and admin.tls.key_file must be set together")
		}
		if cfg.Admin.TLS.CAFile != "" && !cfg.Admin.TLS.HasKeyPair() {
			return errors.New("admin.tls.ca_file needs admin.tls.cert_file and key_file")
		}
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Log.Level)
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "json", "text", "console":
	default:
		return fmt.Errorf("log.format %q is not one of json, text", cfg.Log.Format)
	}
	return nil
}

func verifyQueue(q *QueueSection) error {
	if q.Capacity < 1 {
		return errors.New("queue.capacity must be at least 1")
	}
	if q.InboundCapacity < 1 {
		return errors.New("queue.inbound_capacity must be at least 1")
	}
	// The producer reads zero as the default threshold.
	if q.SkipThreshold < 1 || q.SkipThreshold >= q.Capacity {
		return fmt.Errorf("queue.skip_threshold must be in [1, %d)", q.Capacity)
	}
	if q.MaxFramesPerTick < 1 {
		return errors.New("queue.max_frames_per_tick must be at least 1")
	}
	return nil
}

func verifyTransport(t *TransportSection) error {
	if t.HandshakeTimeout <= 0 {
		return errors.New("transport.handshake_timeout must be positive")
	}
	if t.WriteTimeout < 0 {
		return errors.New("transport.write_timeout must not be negative")
	}
	if t.MaxFrameBytes < 64 {
		return errors.New("transport.max_frame_bytes must be at least 64")
	}
	if t.MaxFramesPerSecond < 0 {
		return errors.New("transport.max_frames_per_second must not be negative")
	}
	if t.ReconnectDelay < 0 {
		return errors.New("transport.reconnect_delay must not be negative")
	}
	return nil
}
