// Package recognition talks to the remote face recognition service.
package recognition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"attendcam/internal/frame"
)

const (
	processFramePath = "/process_frame"
	healthPath       = "/healthz"
	maxResponseSize  = 16 << 20
)

// TransportError is the single failure signal of the client: network errors, service
// error statuses and unparseable responses all end up here.
type TransportError struct {
	Op         string
	StatusCode int    // HTTP status, 0 when no response was received
	Message    string // human-readable message echoed by the service, if any
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("recognition %s failed with status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("recognition %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client sends frames to the recognition service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the service at baseURL. The timeout bounds every
// request; zero means no timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type processFrameRequest struct {
	Image string `json:"image"`
}

// Send posts one artifact and parses the reply. It never retries.
func (c *Client) Send(ctx context.Context, artifact frame.Artifact) (Result, error) {
	jsonData, err := json.Marshal(processFrameRequest{Image: artifact.DataURL})
	if err != nil {
		return nil, &TransportError{Op: "send", Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+processFramePath, bytes.NewReader(jsonData))
	if err != nil {
		return nil, &TransportError{Op: "send", Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Op: "send", StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Op:         "send",
			StatusCode: resp.StatusCode,
			Message:    serviceMessage(body),
			Err:        fmt.Errorf("service error: %s", strings.TrimSpace(string(body))),
		}
	}

	result, err := Parse(body)
	if err != nil {
		return nil, &TransportError{Op: "send", StatusCode: resp.StatusCode, Err: err}
	}
	return result, nil
}

// HealthCheck verifies the recognition service is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return &TransportError{Op: "health check", Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "health check", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &TransportError{
			Op:         "health check",
			StatusCode: resp.StatusCode,
			Message:    serviceMessage(body),
			Err:        fmt.Errorf("unexpected status"),
		}
	}
	return nil
}

// serviceMessage extracts the "message" field of an error body, if there is one.
func serviceMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
