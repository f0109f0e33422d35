package cloudinary

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rebootmart/rebootmart-backend/pkg/config"
	"github.com/rebootmart/rebootmart-backend/pkg/logger"
)

var (
	errCloudNameRequired = errors.New("cloudinary cloud name is required")
	errAPIKeyRequired    = errors.New("cloudinary api key is required")
	errAPISecretRequired = errors.New("cloudinary api secret is required")

	// ErrUnsupportedImageType is returned when the uploaded bytes are not a
	// recognized image format.
	ErrUnsupportedImageType = errors.New("unsupported image type")

	// ErrImageTooLarge is returned when the upload exceeds the configured cap.
	ErrImageTooLarge = errors.New("image exceeds maximum allowed size")
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Asset identifies a stored image.
type Asset struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int64  `json:"bytes"`
}

// Client uploads and deletes images via Cloudinary's signed upload API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cloudName  string
	apiKey     string
	apiSecret  string
	folder     string
	maxBytes   int64
	now        func() time.Time
	logg       *logger.Logger
}

// NewClient validates the configured credentials and returns a media client.
func NewClient(ctx context.Context, cfg config.CloudinaryConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.CloudName) == "" {
		return nil, errCloudNameRequired
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errAPIKeyRequired
	}
	if strings.TrimSpace(cfg.APISecret) == "" {
		return nil, errAPISecretRequired
	}

	maxMB := cfg.MaxMB
	if maxMB <= 0 {
		maxMB = 10
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("cloudinary client initialized (cloud %s)", cfg.CloudName))
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    "https://api.cloudinary.com/v1_1",
		cloudName:  cfg.CloudName,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		folder:     cfg.Folder,
		maxBytes:   int64(maxMB) << 20,
		now:        time.Now,
	}, nil
}

// Upload sniffs the image type, signs the request, and uploads the bytes.
// The filename is only used for the multipart part name.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (*Asset, error) {
	if int64(len(data)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrImageTooLarge, len(data), c.maxBytes)
	}

	detected := mimetype.Detect(data)
	if _, ok := allowedImageTypes[detected.String()]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImageType, detected.String())
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	params := map[string]string{
		"timestamp": timestamp,
	}
	if c.folder != "" {
		params["folder"] = c.folder
	}
	signature := signParams(params, c.apiSecret)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("building upload form: %w", err)
		}
	}
	if err := writer.WriteField("api_key", c.apiKey); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if err := writer.WriteField("signature", signature); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError("upload", resp)
	}

	var asset Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return nil, fmt.Errorf("decoding upload response: %w", err)
	}
	return &asset, nil
}

// Destroy removes a previously uploaded image by its public ID.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	if strings.TrimSpace(publicID) == "" {
		return fmt.Errorf("public id is required")
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}
	signature := signParams(params, c.apiSecret)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range params {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("building destroy form: %w", err)
		}
	}
	if err := writer.WriteField("api_key", c.apiKey); err != nil {
		return fmt.Errorf("building destroy form: %w", err)
	}
	if err := writer.WriteField("signature", signature); err != nil {
		return fmt.Errorf("building destroy form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("building destroy form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/image/destroy", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("building destroy request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("destroying image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError("destroy", resp)
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding destroy response: %w", err)
	}
	if result.Result != "ok" && result.Result != "not found" {
		return fmt.Errorf("destroy %s: unexpected result %q", publicID, result.Result)
	}
	return nil
}

// signParams produces Cloudinary's request signature: the SHA-1 hex digest of
// the sorted key=value pairs joined by & with the API secret appended.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+params[key])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

func decodeAPIError(op string, resp *http.Response) error {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("cloudinary %s failed (http %d): %s", op, resp.StatusCode, envelope.Error.Message)
	}
	return fmt.Errorf("cloudinary %s failed (http %d)", op, resp.StatusCode)
}
