// Package assist proxies project questions to the OpenAI responses API with
// the active project's financial summary as context.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// ErrNoAPIKey means the proxy is not configured.
var ErrNoAPIKey = errors.New("assist: OPENAI_API_KEY not configured")

// Message is one turn of the chat history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client talks to the responses endpoint. No retries; a failed call surfaces
// as an error answer to the user.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewClient builds a client. model defaults to gpt-4.1-mini.
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "gpt-4.1-mini"
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type responsesRequest struct {
	Model string    `json:"model"`
	Input []Message `json:"input"`
	Tools []tool    `json:"tools,omitempty"`
}

type tool struct {
	Type string `json:"type"`
}

type responsesPayload struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Respond sends the prepared input messages and returns the answer text.
func (c *Client) Respond(ctx context.Context, input []Message, includeWeb bool) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	reqBody := responsesRequest{Model: c.model, Input: input}
	if includeWeb {
		reqBody.Tools = []tool{{Type: "web_search_preview"}}
	}
	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("assist: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("assist: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("assist: call openai: %w", err)
	}
	defer res.Body.Close()

	var payload responsesPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil && res.StatusCode == http.StatusOK {
		return "", fmt.Errorf("assist: decode response: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		if payload.Error != nil && payload.Error.Message != "" {
			return "", fmt.Errorf("assist: openai: %s", payload.Error.Message)
		}
		return "", fmt.Errorf("assist: openai status %d", res.StatusCode)
	}

	return extractText(payload), nil
}

func extractText(p responsesPayload) string {
	if txt := strings.TrimSpace(p.OutputText); txt != "" {
		return txt
	}
	var chunks []string
	for _, item := range p.Output {
		for _, c := range item.Content {
			if (c.Type == "output_text" || c.Type == "text") && c.Text != "" {
				chunks = append(chunks, c.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(chunks, "\n"))
}
