package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"auth-service/internal/config"

	"github.com/google/uuid"
)

// SMSSender posts messages to the external SMS gateway.
type SMSSender struct {
	cfg    config.SMSConfig
	client *http.Client
}

func NewSMSSender(cfg config.SMSConfig) *SMSSender {
	return &SMSSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type smsRequest struct {
	RequestID string `json:"request_id"`
	Sender    string `json:"sender,omitempty"`
	To        string `json:"to"`
	Body      string `json:"body"`
}

func (s *SMSSender) Send(ctx context.Context, recipient, _ string, body string) error {
	if s.cfg.ProviderURL == "" {
		return fmt.Errorf("sms provider not configured")
	}

	payload, err := json.Marshal(smsRequest{
		RequestID: uuid.New().String(),
		Sender:    s.cfg.Sender,
		To:        recipient,
		Body:      body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ProviderURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms to %s: %w", recipient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("sms provider returned %d", resp.StatusCode)
	}
	return nil
}
