package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// GatewayService pushes the active request cadence to the BLE gateway's REST
// endpoint, so the gateway actually re-times its connection attempts. The
// cadence only governs how often the gateway asks the repeater for data; the
// repeater reports on its own schedule regardless.
type GatewayService struct {
	logger     *zap.Logger
	apiURL     string
	httpClient *http.Client
}

// PollIntervalPayload represents the payload sent to the gateway API
type PollIntervalPayload struct {
	IntervalSeconds int    `json:"interval_seconds"`
	Reason          string `json:"reason"`
}

// NewGatewayService creates a new gateway notifier
func NewGatewayService(logger *zap.Logger, apiURL string) *GatewayService {
	return &GatewayService{
		logger: logger,
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetPollInterval sends the new request cadence to the gateway via HTTP POST
func (g *GatewayService) SetPollInterval(interval time.Duration, moving bool) error {
	reason := "stationary"
	if moving {
		reason = "moving"
	}

	payload := PollIntervalPayload{
		IntervalSeconds: int(interval.Seconds()),
		Reason:          reason,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/api/v1/poll-interval", g.apiURL)

	req, err := http.NewRequest("POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		g.logger.Error("Failed to create HTTP request",
			zap.Error(err),
			zap.String("url", endpoint),
		)
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "TireLinc-Service/1.0")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Error("Failed to notify gateway",
			zap.Error(err),
			zap.String("url", endpoint),
		)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		g.logger.Info("Gateway poll interval updated",
			zap.Duration("interval", interval),
			zap.String("reason", reason),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil
	}

	g.logger.Error("Gateway API returned error",
		zap.Int("status_code", resp.StatusCode),
		zap.String("status", resp.Status),
	)
	return fmt.Errorf("gateway API error: %s", resp.Status)
}
