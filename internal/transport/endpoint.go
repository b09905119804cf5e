package transport

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
)

// DefaultEndpoint is the address both roles use when none is configured.
const DefaultEndpoint = "tcp://127.0.0.1:5556"

// Endpoint is a parsed scheme://host:port address.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
}

// ParseEndpoint parses an endpoint string. Accepted schemes are tcp and ws;
// both use WebSocket framing over TCP.
func ParseEndpoint(s string) (Endpoint, error) {
	u, err := url.Parse(s)
	if err != nil {
		return Endpoint{}, fmt.Errorf("transport: parse endpoint %q: %w", s, err)
	}
	switch u.Scheme {
	case "tcp", "ws":
	default:
		return Endpoint{}, fmt.Errorf("transport: endpoint %q: unsupported scheme %q", s, u.Scheme)
	}
	if u.Path != "" && u.Path != "/" {
		return Endpoint{}, fmt.Errorf("transport: endpoint %q: unexpected path", s)
	}

	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return Endpoint{}, fmt.Errorf("transport: endpoint %q: %w", s, err)
	}
	if host == "" {
		return Endpoint{}, fmt.Errorf("transport: endpoint %q: missing host", s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("transport: endpoint %q: invalid port %q", s, portStr)
	}
	return Endpoint{Scheme: u.Scheme, Host: host, Port: port}, nil
}

// Address returns host:port for listening or dialing.
func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// URL returns the WebSocket URL to dial.
func (e Endpoint) URL() string {
	return "ws://" + e.Address() + "/"
}

func (e Endpoint) String() string {
	return e.Scheme + "://" + e.Address()
}
