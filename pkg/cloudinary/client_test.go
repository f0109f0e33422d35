package cloudinary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rebootmart/rebootmart-backend/pkg/config"
	"github.com/stretchr/testify/require"
)

// Minimal valid PNG header plus IHDR chunk, enough for sniffing.
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), config.CloudinaryConfig{
		CloudName: "rebootmart-test",
		APIKey:    "key",
		APISecret: "secret",
		Folder:    "rebootmart/products",
		Timeout:   5 * time.Second,
		MaxMB:     1,
	}, nil)
	require.NoError(t, err)
	if baseURL != "" {
		client.baseURL = baseURL
	}
	return client
}

func TestNewClientValidatesCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), config.CloudinaryConfig{APIKey: "k", APISecret: "s"}, nil)
	require.ErrorIs(t, err, errCloudNameRequired)
}

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rebootmart-test/image/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(4<<20))
		require.Equal(t, "key", r.FormValue("api_key"))
		require.NotEmpty(t, r.FormValue("signature"))
		require.Equal(t, "rebootmart/products", r.FormValue("folder"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"public_id":"rebootmart/products/abc","secure_url":"https://res.cloudinary.com/rebootmart-test/abc.png","format":"png","bytes":33}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	asset, err := client.Upload(context.Background(), "thinkpad.png", pngBytes)
	require.NoError(t, err)
	require.Equal(t, "rebootmart/products/abc", asset.PublicID)
	require.True(t, strings.HasPrefix(asset.SecureURL, "https://"))
}

func TestUploadRejectsNonImageBytes(t *testing.T) {
	client := newTestClient(t, "")
	_, err := client.Upload(context.Background(), "notes.txt", []byte("plain text, not an image"))
	require.ErrorIs(t, err, ErrUnsupportedImageType)
}

func TestUploadRejectsOversizedPayload(t *testing.T) {
	client := newTestClient(t, "")
	big := make([]byte, 2<<20)
	copy(big, pngBytes)
	_, err := client.Upload(context.Background(), "huge.png", big)
	require.ErrorIs(t, err, ErrImageTooLarge)
}

func TestDestroy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rebootmart-test/image/destroy", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "rebootmart/products/abc", r.FormValue("public_id"))
		_, _ = w.Write([]byte(`{"result":"ok"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	require.NoError(t, client.Destroy(context.Background(), "rebootmart/products/abc"))
}

func TestDestroyTreatsNotFoundAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"result":"not found"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	require.NoError(t, client.Destroy(context.Background(), "rebootmart/products/gone"))
}

func TestSignParamsIsDeterministicAndSorted(t *testing.T) {
	a := signParams(map[string]string{"timestamp": "100", "folder": "f"}, "secret")
	b := signParams(map[string]string{"folder": "f", "timestamp": "100"}, "secret")
	require.Equal(t, a, b)
	require.Len(t, a, 40)
}
