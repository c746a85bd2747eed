package keyhub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/keyshopvn/keyshop/config"
	"github.com/keyshopvn/keyshop/internal/domain"
	"github.com/keyshopvn/keyshop/pkg/metrics"
)

const purchaseEndpoint = "/api/purchase"

// Adapter implements domain.PurchaseGateway against the KeyHub service.
// KeyHub owns stock reservation and balance debits; this adapter only
// translates the call and keeps timeout and auth handling in one place.
type Adapter struct {
	cfg        config.KeyHubConfig
	httpClient *http.Client
	timeout    time.Duration
}

// NewAdapter creates a new KeyHub adapter instance
func NewAdapter(cfg config.KeyHubConfig, client *http.Client) *Adapter {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	return &Adapter{
		cfg:        cfg,
		httpClient: client,
		timeout:    timeout,
	}
}

// Purchase executes the remote purchase transaction. A transport or
// decode failure returns an error; a delivered response is returned
// as-is, including failures the service reports in its body.
func (a *Adapter) Purchase(request *domain.PurchaseRequest) (*domain.PurchaseResponse, error) {
	if request == nil {
		return nil, fmt.Errorf("purchase request is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	start := time.Now()
	var response domain.PurchaseResponse
	if err := a.doPost(ctx, purchaseEndpoint, request, &response); err != nil {
		metrics.RecordGatewayRequest("error", time.Since(start).Seconds())
		return nil, err
	}

	status := "success"
	if !response.Success {
		status = "rejected"
	}
	metrics.RecordGatewayRequest(status, time.Since(start).Seconds())

	return &response, nil
}

// Helper: perform HTTP POST and decode JSON response
func (a *Adapter) doPost(ctx context.Context, path string, payload interface{}, target interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint(path), bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("keyhub request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("keyhub returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode keyhub response: %w", err)
	}

	return nil
}

func (a *Adapter) endpoint(path string) string {
	base := strings.TrimRight(a.cfg.BaseURL, "/")
	return base + path
}
