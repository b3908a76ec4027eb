// Package openai provides the OpenAI image generation client
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no API key is available
var ErrNotConfigured = errors.New("openai: api key not configured")

// Config holds the client settings
type Config struct {
	APIKey  string
	BaseURL string
	Size    string
	Timeout time.Duration
}

// Client implements outbound.ImageGenerator against the images API
type Client struct {
	apiKey  string
	baseURL string
	size    string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a new OpenAI client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	size := cfg.Size
	if size == "" {
		size = "512x512"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	logger = logger.Named("openai")
	if cfg.APIKey == "" {
		logger.Info("OpenAI API key not found, images will use placeholders")
	} else {
		logger.Info("OpenAI client initialized with API key", zap.String("base_url", baseURL))
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		size:    size,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// OpenAI API structures
type imageRequest struct {
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Created int64       `json:"created"`
	Data    []imageData `json:"data"`
}

type imageData struct {
	URL           string `json:"url"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// GenerateImage requests a single image for prompt and returns its URL
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	jsonBody, err := json.Marshal(imageRequest{
		Prompt:         prompt,
		N:              1,
		Size:           c.size,
		ResponseFormat: "url",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/images/generations", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var imgResp imageResponse
	if err := json.Unmarshal(body, &imgResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(imgResp.Data) == 0 || imgResp.Data[0].URL == "" {
		return "", fmt.Errorf("no image url returned")
	}

	c.logger.Debug("OpenAI image generated",
		zap.Duration("duration", time.Since(start)),
		zap.Bool("prompt_revised", imgResp.Data[0].RevisedPrompt != ""),
	)

	return imgResp.Data[0].URL, nil
}
