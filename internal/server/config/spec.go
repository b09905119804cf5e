package config

import (
	"fmt"
	"strings"
	"time"
)

// ScenelinkConfig is the root configuration for scenelink-server.
type ScenelinkConfig struct {
	// Mode selects the roles: server (consumer), client (producer) or both.
	Mode     string `koanf:"mode"`
	Endpoint string `koanf:"endpoint"`

	Tick      TickSection      `koanf:"tick"`
	Queue     QueueSection     `koanf:"queue"`
	Transport TransportSection `koanf:"transport"`
	Scene     SceneSection     `koanf:"scene"`
	Capture   CaptureSection   `koanf:"capture"`
	Admin     AdminSection     `koanf:"admin"`
	Log       LogSection       `koanf:"log"`
}

// TickSection configures the fixed-rate tick drivers.
type TickSection struct {
	// Rate is ticks per second.
	Rate float64 `koanf:"rate"`
}

// Interval returns the tick period.
func (t TickSection) Interval() time.Duration {
	if t.Rate <= 0 {
		return time.Duration(float64(time.Second) / DefaultTickRate)
	}
	return time.Duration(float64(time.Second) / t.Rate)
}

// QueueSection configures the queues between tick drivers and transport.
type QueueSection struct {
	Capacity        int `koanf:"capacity"`
	InboundCapacity int `koanf:"inbound_capacity"`
	// SkipThreshold is the outbound length above which producer ticks are
	// skipped.
	SkipThreshold    int `koanf:"skip_threshold"`
	MaxFramesPerTick int `koanf:"max_frames_per_tick"`
}

// TransportSection configures the session layer.
type TransportSection struct {
	HandshakeTimeout   time.Duration `koanf:"handshake_timeout"`
	WriteTimeout       time.Duration `koanf:"write_timeout"`
	MaxFrameBytes      int64         `koanf:"max_frame_bytes"`
	MaxFramesPerSecond float64       `koanf:"max_frames_per_second"`
	// ReconnectDelay is how long the producer waits before redialing; 0
	// disables reconnecting.
	ReconnectDelay time.Duration `koanf:"reconnect_delay"`
}

// TLSSection names the PEM files of the admin server. CAFile, when set,
// requires client certificates signed by it.
type TLSSection struct {
	CertFile string `koanf:"cert_file"`
	KeyFile  string `koanf:"key_file"`
	CAFile   string `koanf:"ca_file"`
}

// HasKeyPair reports whether a certificate and key are configured.
func (t TLSSection) HasKeyPair() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// SceneSection configures the in-memory engine.
type SceneSection struct {
	// File is the producer's source scene description.
	File          string        `koanf:"file"`
	Watch         bool          `koanf:"watch"`
	ReadbackDelay time.Duration `koanf:"readback_delay"`
	// LibraryFile lists images the consumer resolves by name.
	LibraryFile string `koanf:"library_file"`
}

// CaptureSection configures frame recording on the consumer.
type CaptureSection struct {
	// Path of the capture file; empty disables capture.
	Path string `koanf:"path"`
}

// AdminSection configures the admin HTTP server.
type AdminSection struct {
	// Addr is the listen address; empty disables the admin server.
	Addr string `koanf:"addr"`
	// Token, when set, is required as a bearer token on /v1 routes.
	Token     string  `koanf:"token"`
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
	// TLS serves HTTPS when a key pair is set.
	TLS TLSSection `koanf:"tls"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Role is a set of role flags.
type Role uint8

const (
	// RoleServer binds the endpoint and mirrors the remote scene.
	RoleServer Role = 1 << iota
	// RoleClient connects to the endpoint and publishes the local scene.
	RoleClient
)

// Has reports whether r includes all of o.
func (r Role) Has(o Role) bool { return r&o == o && o != 0 }

func (r Role) String() string {
	switch r {
	case RoleServer:
		return "server"
	case RoleClient:
		return "client"
	case RoleServer | RoleClient:
		return "both"
	default:
		return "none"
	}
}

// ParseRole parses a mode string.
func ParseRole(mode string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "server":
		return RoleServer, nil
	case "client":
		return RoleClient, nil
	case "both":
		return RoleServer | RoleClient, nil
	default:
		return 0, fmt.Errorf("mode must be server, client or both, got %q", mode)
	}
}

// Role returns the parsed Mode, or 0 when it is invalid.
func (c *ScenelinkConfig) Role() Role {
	r, _ := ParseRole(c.Mode)
	return r
}
