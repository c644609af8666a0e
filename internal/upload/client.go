// Package upload relays files to the upload endpoint and returns their public URL.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured is returned when no upload endpoint is set
var ErrNotConfigured = errors.New("upload endpoint is not configured")

// Config holds upload endpoint settings
type Config struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
}

type uploadResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// Client posts multipart files to the upload endpoint
type Client struct {
	httpClient *resty.Client
	endpoint   string
	logger     *slog.Logger
}

// NewClient creates a new upload client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &Client{
		httpClient: client,
		endpoint:   cfg.Endpoint,
		logger:     logger,
	}
}

// Upload sends the file as the "file" form field. The body is read once, so failed uploads are not retried.
func (c *Client) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	if c.endpoint == "" {
		return "", ErrNotConfigured
	}

	var out uploadResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFileReader("file", filename, body).
		SetResult(&out).
		SetError(&out).
		Post(c.endpoint)
	if err != nil {
		c.logger.Error("Upload request failed",
			slog.String("filename", filename),
			slog.Any("error", err),
		)
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	if resp.IsError() {
		c.logger.Error("Upload endpoint returned error",
			slog.String("filename", filename),
			slog.Int("status_code", resp.StatusCode()),
			slog.String("message", out.Error),
		)
		return "", fmt.Errorf("upload of %s failed with status %d", filename, resp.StatusCode())
	}

	if out.URL == "" {
		return "", fmt.Errorf("upload of %s returned no url", filename)
	}

	c.logger.Info("File uploaded",
		slog.String("filename", filename),
		slog.String("url", out.URL),
	)
	return out.URL, nil
}
