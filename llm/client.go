// Package llm invokes the external extraction service that turns a page
// snapshot into product JSON. The client speaks the OpenAI-compatible
// chat-completions protocol over net/http, which covers Gemini's
// compatibility endpoint as well as any other provider exposing one.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zoontopia/shopcrawl/config"
	"github.com/zoontopia/shopcrawl/models"
)

// Client is a lightweight extraction-service client.
type Client struct {
	httpClient *http.Client
	cfg        config.LLMConfig
}

// NewClient creates a new extraction client. Pass nil to use a default
// http.Client.
func NewClient(httpClient *http.Client, cfg config.LLMConfig) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{httpClient: httpClient, cfg: cfg}
}

// chatRequest is the chat completion request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the minimal chat completion response we need.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chatErrorResponse captures an API error from the provider.
type chatErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Extract sends the cleaned page content and the product field contract
// to the service and returns its raw text output.
//
// The response is returned verbatim: the service may ignore every format
// constraint in the prompt, and interpreting (and repairing) the content
// is the repair package's job, not the gateway's.
func (c *Client) Extract(ctx context.Context, content, keyword, platform string, fields []models.Field) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: BuildPrompt(fields, c.cfg.MaxItems, keyword, platform)},
			{Role: "user", Content: content},
		},
		Temperature: 0,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", models.NewCrawlError(models.ErrCodeExtractionService, "extraction request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", models.NewCrawlError(models.ErrCodeExtractionService, "failed to read extraction response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyAPIError(resp.StatusCode, respBody)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", models.NewCrawlError(models.ErrCodeExtractionService, "failed to parse extraction envelope", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", models.NewCrawlError(models.ErrCodeExtractionService, "extraction service returned no choices", nil)
	}

	return chatResp.Choices[0].Message.Content, nil
}

// classifyAPIError wraps a non-200 provider response. All provider-side
// failures are fatal to the job with the same code; the HTTP status and
// provider message are preserved for logs.
func classifyAPIError(statusCode int, body []byte) *models.CrawlError {
	var errResp chatErrorResponse
	msg := "extraction service error"
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		msg = errResp.Error.Message
	}
	return models.NewCrawlError(
		models.ErrCodeExtractionService,
		fmt.Sprintf("extraction service returned %d: %s", statusCode, msg),
		nil,
	)
}
