package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/safetrail/engine/internal/alert"
)

// ErrDelivery marks a failed delivery attempt to the ingestion endpoint.
var ErrDelivery = errors.New("alert delivery failed")

// DeliveryTimeout bounds a single delivery attempt.
const DeliveryTimeout = 10 * time.Second

// Deliverer sends one alert to the remote ingestion endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, a alert.Alert) error
}

// ingestionPayload is the wire format the backend accepts at POST /alerts.
type ingestionPayload struct {
	Type     string          `json:"type"`
	Severity string          `json:"severity"`
	Message  string          `json:"message"`
	Location *alert.Location `json:"location,omitempty"`
	Metadata map[string]any  `json:"metadata,omitempty"`
}

// APIClient delivers alerts to the backend ingestion endpoint.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates an ingestion client for the given base URL.
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DeliveryTimeout,
		},
	}
}

// Deliver makes exactly one POST /alerts attempt. Any status outside 2xx
// is a delivery failure; no retries are made here.
func (c *APIClient) Deliver(ctx context.Context, a alert.Alert) error {
	payload := ingestionPayload{
		Type:     string(a.Category),
		Severity: string(a.Severity),
		Message:  a.Message,
		Location: a.Location,
		Metadata: a.Metadata,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal alert %s: %v", ErrDelivery, a.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/alerts", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrDelivery, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected HTTP status %d", ErrDelivery, resp.StatusCode)
	}
	return nil
}
