package config

import (
	"time"

	"github.com/yndnr/scenelink/internal/transport"
)

// Default configuration values.
const (
	DefaultMode     = "both"
	DefaultTickRate = 50.0

	DefaultQueueCapacity    = 16
	DefaultInboundCapacity  = 64
	DefaultSkipThreshold    = 5
	DefaultMaxFramesPerTick = 64

	DefaultReconnectDelay = 2 * time.Second
	DefaultReadbackDelay  = 20 * time.Millisecond

	DefaultAdminAddr      = "127.0.0.1:5580"
	DefaultAdminRateLimit = 50.0
	DefaultAdminRateBurst = 100

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default configuration.
func Default() *ScenelinkConfig {
	return &ScenelinkConfig{
		Mode:     DefaultMode,
		Endpoint: transport.DefaultEndpoint,
		Tick: TickSection{
			Rate: DefaultTickRate,
		},
		Queue: QueueSection{
			Capacity:         DefaultQueueCapacity,
			InboundCapacity:  DefaultInboundCapacity,
			SkipThreshold:    DefaultSkipThreshold,
			MaxFramesPerTick: DefaultMaxFramesPerTick,
		},
		Transport: TransportSection{
			HandshakeTimeout: transport.DefaultHandshakeTimeout,
			WriteTimeout:     transport.DefaultWriteTimeout,
			MaxFrameBytes:    transport.DefaultMaxFrameBytes,
			ReconnectDelay:   DefaultReconnectDelay,
		},
		Scene: SceneSection{
			ReadbackDelay: DefaultReadbackDelay,
		},
		Admin: AdminSection{
			Addr:      DefaultAdminAddr,
			RateLimit: DefaultAdminRateLimit,
			RateBurst: DefaultAdminRateBurst,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
