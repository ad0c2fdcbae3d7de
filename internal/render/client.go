// Package render turns HTML into PNG images through a Gotenberg-compatible
// Chromium screenshot service.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	screenshotPath = "/forms/chromium/screenshot/html"
	healthPath     = "/health"

	defaultTimeout = 20 * time.Second
	defaultWidth   = 520
	defaultHeight  = 360
	// maxImageSize bounds how much of a rendered image is read.
	maxImageSize = 8 << 20
)

var (
	// ErrUnavailable is returned when no rendering service is configured.
	ErrUnavailable = errors.New("renderer unavailable")
	// ErrRenderFailed is returned when the rendering service rejects a document.
	ErrRenderFailed = errors.New("render failed")
)

// Config holds rendering service settings. An empty URL disables rendering.
type Config struct {
	URL     string
	Timeout time.Duration
	Width   int
	Height  int
}

// Client renders HTML documents to PNG.
type Client struct {
	config Config
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a rendering client.
func NewClient(config *Config, logger *zap.Logger) *Client {
	cfg := *config
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Width <= 0 {
		cfg.Width = defaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHeight
	}

	return &Client{
		config: cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Available reports whether a rendering service is configured.
func (c *Client) Available() bool {
	return c != nil && c.config.URL != ""
}

// Render screenshots html and returns the PNG bytes.
func (c *Client) Render(ctx context.Context, html string) ([]byte, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	file, err := form.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.WriteString(file, html); err != nil {
		return nil, fmt.Errorf("failed to write document: %w", err)
	}

	fields := map[string]string{
		"format": "png",
		"width":  strconv.Itoa(c.config.Width),
		"height": strconv.Itoa(c.config.Height),
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL+screenshotPath, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("renderer request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrRenderFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	image, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read rendered image: %w", err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrRenderFailed)
	}

	c.logger.Debug("Rendered document",
		zap.Int("bytes", len(image)),
		zap.Duration("took", time.Since(start)))

	return image, nil
}

// Ping checks the service health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Available() {
		return ErrUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL+healthPath, http.NoBody)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("renderer health check failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("renderer health check returned status %d", resp.StatusCode)
	}
	return nil
}
