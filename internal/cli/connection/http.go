package connection

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/scenelink/internal/infra/buildinfo"
)

// DefaultTimeout bounds a single admin request.
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx admin response.
type APIError struct {
	Status    int
	Code      string
	Message   string
	Details   string
	RequestID string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, msg)
	}
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, msg, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// IsStatus reports whether err is an *APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// envelope mirrors the server's response format with data left raw.
type envelope struct {
	Code      string          `json:"code"`
	Message   string          `json:"message"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
	Details   json.RawMessage `json:"details"`
}

// HTTPClient provides HTTP communication with the admin server.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	token   string
}

// BaseURL normalizes a server address: a bare host:port gets an http://
// prefix and trailing slashes are dropped.
func BaseURL(server string) string {
	u := strings.TrimRight(server, "/")
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "http://" + u
	}
	return u
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTLSConfig sets the TLS config used for https servers.
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *HTTPClient) {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = cfg
		c.client.Transport = tr
	}
}

// NewHTTPClient creates a client for server, normalized by BaseURL. An
// empty token sends no Authorization header.
func NewHTTPClient(server, token string, opts ...ClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: BaseURL(server),
		token:   token,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request and returns the raw response.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.addHeaders(req)
	return c.client.Do(req)
}

// GetJSON performs a GET request and decodes the envelope's data into target.
func (c *HTTPClient) GetJSON(ctx context.Context, path string, target any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	return ParseResponse(resp, target)
}

func (c *HTTPClient) addHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "scenelink-cli/"+buildinfo.Version)
}

// ParseResponse decodes an admin response. On success the envelope's data
// is decoded into target (which may be nil). Error envelopes and non-JSON
// error bodies become *APIError.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	jsonErr := json.Unmarshal(body, &env)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr == nil {
			apiErr.Code = env.Code
			apiErr.Message = env.Message
			apiErr.RequestID = env.RequestID
			var details string
			if json.Unmarshal(env.Details, &details) == nil {
				apiErr.Details = details
			}
		}
		return apiErr
	}

	if jsonErr != nil {
		return fmt.Errorf("parse response: %w", jsonErr)
	}
	if target == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, target); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}
	return nil
}
