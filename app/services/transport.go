// Package services provides external service integrations and technical concerns like message transport and tokens
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// MessageTransport delivers a rendered reminder to a phone number and
// returns the provider's tracking ID for the message.
type MessageTransport interface {
	Send(ctx context.Context, phone, body string) (trackingID string, err error)
}

// WhatsAppTransport sends messages through a WhatsApp Business gateway
type WhatsAppTransport struct {
	baseURL    string
	apiKey     string
	fromNumber string
	client     *http.Client
}

// NewWhatsAppTransport creates a new WhatsApp gateway transport
func NewWhatsAppTransport(baseURL, apiKey, fromNumber string, timeout time.Duration) MessageTransport {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WhatsAppTransport{
		baseURL:    baseURL,
		apiKey:     apiKey,
		fromNumber: fromNumber,
		client:     &http.Client{Timeout: timeout},
	}
}

type whatsAppSendRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

type whatsAppSendResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

func (t *WhatsAppTransport) Send(ctx context.Context, phone, body string) (string, error) {
	payload, err := json.Marshal(whatsAppSendRequest{
		From: t.fromNumber,
		To:   phone,
		Body: body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read gateway response: %w", err)
	}

	var out whatsAppSendResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode gateway response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out.MessageID, fmt.Errorf("gateway rejected send (status %d): %s", resp.StatusCode, out.Error)
	}
	return out.MessageID, nil
}

// MockMessageTransport logs sends instead of delivering them. Used in
// development and in environments without gateway credentials.
type MockMessageTransport struct{}

func NewMockMessageTransport() MessageTransport {
	return &MockMessageTransport{}
}

func (t *MockMessageTransport) Send(ctx context.Context, phone, body string) (string, error) {
	trackingID := uuid.New().String()
	log.Printf("Message sent to %s [%s]: %s", phone, trackingID, body)
	return trackingID, nil
}
