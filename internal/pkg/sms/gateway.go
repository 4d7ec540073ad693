package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrGatewayNotConfigured is returned when the gateway has no URL or API key.
var ErrGatewayNotConfigured = errors.New("sms: gateway url and api key are required")

// GatewayConfig configures a JSON HTTP SMS gateway.
type GatewayConfig struct {
	URL    string
	APIKey string
	Client *http.Client
}

// Gateway posts {"to","text","sender"} as JSON with the API key in the
// Authorization header. Any 2xx status is success.
type Gateway struct {
	cfg GatewayConfig
}

func NewGateway(cfg GatewayConfig) (*Gateway, error) {
	if cfg.URL == "" || cfg.APIKey == "" {
		return nil, ErrGatewayNotConfigured
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	return &Gateway{cfg: cfg}, nil
}

type gatewayRequest struct {
	To     string `json:"to"`
	Text   string `json:"text"`
	Sender string `json:"sender,omitempty"`
}

func (g *Gateway) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	raw, err := json.Marshal(gatewayRequest{To: msg.To, Text: msg.Text, Sender: msg.SenderID})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("sms: gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", g.cfg.APIKey)

	resp, err := g.cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sms: gateway request failed status=%d body=%s", resp.StatusCode, bytes.TrimSpace(body))
	}
	//nolint:errcheck // drain for connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
