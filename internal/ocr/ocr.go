// Package ocr talks to an OCR.space compatible text extraction service.
package ocr

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coney-counter/coney-counter-api/internal/config"
	"github.com/gojek/heimdall/v7"
	"github.com/gojek/heimdall/v7/httpclient"
)

var (
	ErrNotConfigured = errors.New("ocr service is not configured")
	ErrProcessing    = errors.New("ocr service could not process the image")
)

type Client struct {
	endpoint string
	apiKey   string
	http     heimdall.Doer
}

type parseResponse struct {
	ParsedResults []struct {
		ParsedText string `json:"ParsedText"`
	} `json:"ParsedResults"`
	IsErroredOnProcessing bool            `json:"IsErroredOnProcessing"`
	ErrorMessage          json.RawMessage `json:"ErrorMessage"`
}

func NewClient(cfg *config.Config) *Client {
	timeout := cfg.OCRTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	backoff := heimdall.NewConstantBackoff(250*time.Millisecond, 100*time.Millisecond)
	client := httpclient.NewClient(
		httpclient.WithHTTPTimeout(timeout),
		httpclient.WithRetryCount(cfg.OCRRetryCount),
		httpclient.WithRetrier(heimdall.NewRetrier(backoff)),
	)
	return &Client{endpoint: cfg.OCREndpoint, apiKey: cfg.OCRAPIKey, http: client}
}

// Configured reports whether an API key and endpoint are set.
func (c *Client) Configured() bool {
	return c != nil && c.endpoint != "" && c.apiKey != ""
}

// ExtractText sends a JPEG image and returns the recognised text of every page.
func (c *Client) ExtractText(ctx context.Context, jpeg []byte) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	form := url.Values{}
	form.Set("base64Image", "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(jpeg))
	form.Set("language", "eng")
	form.Set("scale", "true")
	form.Set("OCREngine", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return "", fmt.Errorf("ocr request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ocr response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed parseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode ocr response: %w", err)
	}
	if parsed.IsErroredOnProcessing {
		return "", fmt.Errorf("%w: %s", ErrProcessing, errorMessage(parsed.ErrorMessage))
	}

	var pages []string
	for _, r := range parsed.ParsedResults {
		pages = append(pages, r.ParsedText)
	}
	return strings.Join(pages, "\n"), nil
}

// errorMessage flattens ErrorMessage, which the service sends either as a
// string or as a list of strings.
func errorMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "unknown error"
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
