// Package ai wraps the hosted generative-vision API that estimates a
// receipt's carbon footprint, and the extraction of numeric results
// from its free-text replies. The model output has no structured
// contract; everything returned by the API is treated as untrusted
// input and parsed in exactly one place (Extract).
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-1.5-flash"
	defaultHTTPTimeout = 30 * time.Second
	generatePathFmt    = "/v1beta/models/%s:generateContent"
)

// ErrCallFailed marks a transport-level failure of the external call:
// network error, timeout, quota, or a non-2xx status. It is always
// recoverable at the caller.
var ErrCallFailed = errors.New("external AI call failed")

// Config holds settings for the generative API client.
type Config struct {
	// BaseURL is the API origin. Empty means the hosted default.
	BaseURL string

	// Model is the vision-capable model name.
	Model string

	// APIKey authenticates the request.
	APIKey string

	// Timeout bounds each call end to end. The session is single
	// threaded, so an unbounded hang would block it indefinitely.
	Timeout time.Duration
}

// Client calls the generateContent endpoint with an instruction and an
// inline base64 image. Images are always sent base64-encoded inside the
// JSON body; PNG and JPEG are accepted.
type Client struct {
	cfg    Config
	http   *http.Client
	logger zerolog.Logger
}

// NewClient creates a Client, filling in defaults for unset fields.
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultHTTPTimeout
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "ai").Logger(),
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// FirstText returns the first non-empty text part of the reply.
func (r *generateResponse) FirstText() string {
	if r == nil {
		return ""
	}
	for _, cand := range r.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// DescribeImage sends the instruction and image to the model and
// returns its free-text reply. All failures wrap ErrCallFailed.
func (c *Client) DescribeImage(ctx context.Context, instruction string, image []byte, mimeType string) (string, error) {
	payload := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: instruction},
				{InlineData: &inlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrCallFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := c.cfg.BaseURL + fmt.Sprintf(generatePathFmt, c.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Msg("generate call failed")
		return "", fmt.Errorf("%w: %v", ErrCallFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn().Int("status", resp.StatusCode).Bytes("body", body).Msg("generate call rejected")
		return "", fmt.Errorf("%w: status %d", ErrCallFailed, resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrCallFailed, err)
	}

	c.logger.Debug().
		Dur("elapsed", time.Since(start)).
		Str("model", c.cfg.Model).
		Msg("generate call completed")

	return out.FirstText(), nil
}
