// Package services provides external service integrations and technical concerns like transports and tokens
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppTransportSend(t *testing.T) {
	t.Run("successful send returns tracking ID", func(t *testing.T) {
		var gotPath, gotAuth string
		var gotReq whatsAppSendRequest

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(whatsAppSendResponse{
				MessageID: "wamid.123",
				Status:    "queued",
			})
		}))
		defer server.Close()

		transport := NewWhatsAppTransport(server.URL, "test-api-key", "5511900000000", 5*time.Second)
		trackingID, err := transport.Send(context.Background(), "5511987654321", "Ola Maria")
		require.NoError(t, err)

		assert.Equal(t, "wamid.123", trackingID)
		assert.Equal(t, "/v1/messages", gotPath)
		assert.Equal(t, "Bearer test-api-key", gotAuth)
		assert.Equal(t, "5511900000000", gotReq.From)
		assert.Equal(t, "5511987654321", gotReq.To)
		assert.Equal(t, "Ola Maria", gotReq.Body)
	})

	t.Run("rejected send surfaces gateway error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(whatsAppSendResponse{
				Status: "rejected",
				Error:  "recipient not on whatsapp",
			})
		}))
		defer server.Close()

		transport := NewWhatsAppTransport(server.URL, "test-api-key", "5511900000000", 5*time.Second)
		_, err := transport.Send(context.Background(), "123", "Ola")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recipient not on whatsapp")
	})

	t.Run("unreachable gateway returns error", func(t *testing.T) {
		transport := NewWhatsAppTransport("http://127.0.0.1:1", "key", "from", time.Second)
		_, err := transport.Send(context.Background(), "123", "Ola")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "gateway unreachable")
	})

	t.Run("cancelled context aborts send", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(time.Second)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		transport := NewWhatsAppTransport(server.URL, "key", "from", 5*time.Second)
		_, err := transport.Send(ctx, "123", "Ola")
		require.Error(t, err)
	})

	t.Run("non-JSON response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>502 Bad Gateway</html>"))
		}))
		defer server.Close()

		transport := NewWhatsAppTransport(server.URL, "key", "from", 5*time.Second)
		_, err := transport.Send(context.Background(), "123", "Ola")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode gateway response")
	})
}

func TestMockMessageTransport(t *testing.T) {
	transport := NewMockMessageTransport()

	first, err := transport.Send(context.Background(), "5511987654321", "Ola")
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := transport.Send(context.Background(), "5511987654321", "Ola")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
