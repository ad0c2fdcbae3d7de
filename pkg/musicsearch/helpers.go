package musicsearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

const (
	// commonUserAgent is the user agent string used for all upstream requests.
	commonUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// defaultHTTPTimeout is the default timeout for upstream requests.
	defaultHTTPTimeout = 10 * time.Second
	// maxHTTPRedirects is the maximum number of HTTP redirects to follow.
	maxHTTPRedirects = 3
	// maxResponseSize bounds how much of an upstream body is read.
	maxResponseSize = 1 << 20
)

var (
	// ErrTooManyRedirects is returned when too many redirects are encountered.
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrUnexpectedStatus is returned when an upstream answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected upstream status")
	// ErrMalformedResponse is returned when an upstream body is not the expected JSON shape.
	ErrMalformedResponse = errors.New("malformed upstream response")
)

// NewHTTPClient creates an HTTP client with the package's standard settings.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxHTTPRedirects {
				return ErrTooManyRedirects
			}
			return nil
		},
	}
}

// fetchJSON issues a single GET and returns the parsed JSON document.
func fetchJSON(
	ctx context.Context,
	client *http.Client,
	endpoint string,
	params url.Values,
	serviceName string,
) (gjson.Result, error) {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("User-Agent", commonUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s request failed: %w", serviceName, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return gjson.Result{}, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, serviceName, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("failed to read %s response: %w", serviceName, err)
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: %s body is not JSON", ErrMalformedResponse, serviceName)
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: %s body is not an object", ErrMalformedResponse, serviceName)
	}

	return doc, nil
}
