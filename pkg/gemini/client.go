// Package gemini is a minimal client for the Gemini generateContent API,
// sending one prompt and one inline image per request.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"recipebox/internal/common"

	"github.com/gofiber/fiber/v2"
	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-pro"
	DefaultTimeout = 60 * time.Second
)

// Config holds Gemini connection details.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client calls the generateContent endpoint of one model.
type Client struct {
	apiKey   string
	endpoint string
	timeout  time.Duration
}

// NewClient creates a new Gemini client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Gemini API key is empty", common.ErrConfig)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(cfg.BaseURL, "/"), cfg.Model),
		timeout:  cfg.Timeout,
	}, nil
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

// Describe asks the model to respond to prompt about the given image. Every
// failure is wrapped with common.ErrUpstream.
func (c *Client) Describe(ctx context.Context, mimeType string, image []byte, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}

	payload := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
			},
		}},
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Post(c.endpoint)
	agent.Set("x-goog-api-key", c.apiKey)
	agent.JSON(payload)
	agent.Timeout(timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		err := errors.Join(errs...)
		if errors.Is(err, fasthttp.ErrTimeout) {
			return "", fmt.Errorf("%w: request timed out after %s", common.ErrUpstream, timeout)
		}
		return "", fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}

	if code < 200 || code >= 300 {
		if msg := gjson.GetBytes(body, "error.message").String(); msg != "" {
			return "", fmt.Errorf("%w: status %d: %s", common.ErrUpstream, code, msg)
		}
		return "", fmt.Errorf("%w: status %d", common.ErrUpstream, code)
	}

	return extractText(body)
}

func extractText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: response is not valid JSON", common.ErrUpstream)
	}

	if reason := gjson.GetBytes(body, "promptFeedback.blockReason").String(); reason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", common.ErrUpstream, reason)
	}

	var sb strings.Builder
	for _, text := range gjson.GetBytes(body, "candidates.0.content.parts.#.text").Array() {
		sb.WriteString(text.String())
	}
	if sb.Len() == 0 {
		reason := gjson.GetBytes(body, "candidates.0.finishReason").String()
		if reason == "" {
			reason = "no candidates"
		}
		return "", fmt.Errorf("%w: empty response (%s)", common.ErrUpstream, reason)
	}
	return sb.String(), nil
}
