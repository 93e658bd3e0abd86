package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const responsesPath = "/v1/responses"

// Sentinel errors.
var (
	// ErrRefused is returned when the model declines to answer.
	ErrRefused = errors.New("model refused")

	// ErrEmptyOutput is returned when the reply carries no output text.
	ErrEmptyOutput = errors.New("empty model output")
)

// Client calls the OpenAI Responses API. Each call is a single attempt.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client from the provided configuration.
func NewClient(cfg *Config) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Complete returns free-form text for the given instructions and payload.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	req := c.newRequest(system, user)

	text, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// CompleteJSON asks for a reply conforming to schema and decodes it.
func (c *Client) CompleteJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" || schema == nil {
		return nil, errors.New("schema name and schema are required")
	}
	req := c.newRequest(system, user)
	req.Text = &struct {
		Format map[string]any `json:"format"`
	}{
		Format: map[string]any{
			"type":   "json_schema",
			"name":   schemaName,
			"schema": schema,
			"strict": true,
		},
	}

	text, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("parsing model JSON: %w", err)
	}
	return obj, nil
}

func (c *Client) newRequest(system, user string) *responsesRequest {
	return &responsesRequest{
		Model: c.model,
		Input: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
}

// do sends one request and extracts the assistant's output text.
func (c *Client) do(ctx context.Context, body *responsesRequest) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+responsesPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("API error %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("API error %d", resp.StatusCode)
	}

	var out responsesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	return extractOutputText(out)
}

func extractOutputText(resp responsesResponse) (string, error) {
	var b strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			switch part.Type {
			case "refusal":
				return "", fmt.Errorf("%w: %s", ErrRefused, part.Refusal)
			case "output_text":
				b.WriteString(part.Text)
			}
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyOutput
	}
	return b.String(), nil
}
