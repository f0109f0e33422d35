package onesignal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rebootmart/rebootmart-backend/pkg/config"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), config.OneSignalConfig{
		AppID:   "app-123",
		APIKey:  "rest-key",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	return client
}

func TestNewClientValidatesCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), config.OneSignalConfig{APIKey: "k"}, nil)
	require.ErrorIs(t, err, errAppIDRequired)
}

func TestSendBroadcast(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notifications", r.URL.Path)
		require.Equal(t, "Basic rest-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"id":"notif-1","recipients":420}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	result, err := client.Send(context.Background(), Notification{
		Heading: "Weekend Sale",
		Content: "Up to 40% off refurbished laptops",
	})
	require.NoError(t, err)
	require.Equal(t, "notif-1", result.ID)
	require.Equal(t, 420, result.Recipients)

	require.Equal(t, "app-123", captured["app_id"])
	require.Contains(t, captured, "included_segments")
	require.NotContains(t, captured, "filters")
}

func TestSendTagFiltered(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"id":"notif-2","recipients":18}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Send(context.Background(), Notification{
		Heading:    "Gaming deals",
		Content:    "New RTX desktops in stock",
		TagKey:     "segment",
		TagFilters: []string{"gamers", "power-users"},
	})
	require.NoError(t, err)

	filters, ok := captured["filters"].([]any)
	require.True(t, ok)
	// two tag filters joined by one OR operator
	require.Len(t, filters, 3)
	require.NotContains(t, captured, "included_segments")
}

func TestSendRequiresHeadingAndContent(t *testing.T) {
	client := newTestClient(t, "https://onesignal.example.com")

	_, err := client.Send(context.Background(), Notification{Content: "body only"})
	require.Error(t, err)

	_, err = client.Send(context.Background(), Notification{Heading: "title only"})
	require.Error(t, err)
}

func TestSendSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":["app_id not found"]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.Send(context.Background(), Notification{Heading: "h", Content: "c"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Contains(t, apiErr.Messages, "app_id not found")
}
