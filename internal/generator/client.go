package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"dst-eval-go/internal/logger"
	"dst-eval-go/internal/types"
)

// Client generates slot values through an OpenAI-style chat completions
// gateway. Configuration comes from the environment: LLM_GATEWAY_URL,
// LLM_API_KEY, LLM_MODEL.
type Client struct {
	gatewayURL string
	apiKey     string
	model      string
	timeout    time.Duration
	maxRetry   time.Duration
	httpClient *http.Client
}

// NewClient reads the gateway configuration from the environment.
func NewClient() *Client {
	timeout := 12 * time.Second
	return &Client{
		gatewayURL: os.Getenv("LLM_GATEWAY_URL"),
		apiKey:     os.Getenv("LLM_API_KEY"),
		model:      os.Getenv("LLM_MODEL"),
		timeout:    timeout,
		maxRetry:   30 * time.Second,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate produces one value per example, in example order. Each example
// is a separate gateway call; a failed example fails the whole batch since
// a partial batch cannot be aligned with its examples.
func (c *Client) Generate(ctx context.Context, examples []types.SlotExample) ([]string, error) {
	if c.gatewayURL == "" || c.apiKey == "" {
		return nil, fmt.Errorf("llm gateway not configured")
	}
	out := make([]string, len(examples))
	for i, ex := range examples {
		value, err := c.generateOne(ctx, ex.ModelInput)
		if err != nil {
			return nil, fmt.Errorf("generate for dialogue %q turn %d slot %q: %w", ex.DialogueID, ex.TurnID, ex.Slot, err)
		}
		out[i] = value
	}
	return out, nil
}

func (c *Client) generateOne(ctx context.Context, input string) (string, error) {
	log := logger.New().WithComponent("generator.client")

	reqBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": input},
		},
		"temperature": 0.0,
	}
	data, _ := json.Marshal(reqBody)

	var value string
	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		req, _ := http.NewRequestWithContext(reqCtx, "POST", c.gatewayURL, bytes.NewReader(data))
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.WithError(err).Warn("llm request failed")
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if content, ok := contentFromChoices(body); ok {
			value = strings.TrimSpace(content)
			return nil
		}

		err = fmt.Errorf("no content in llm response (status %d)", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// client errors won't heal on retry
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = c.maxRetry
	// the retry error carries the last attempt's failure, or the context
	// error when the pass was cancelled mid-wait
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return "", fmt.Errorf("llm generate failed: %w", err)
	}
	return value, nil
}

// contentFromChoices reads choices[0].message.content from an OpenAI-style
// response body. The content is the generated value verbatim; it is never
// validated, since arbitrary model output is acceptable.
func contentFromChoices(body []byte) (string, bool) {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false
	}
	if len(parsed.Choices) == 0 {
		return "", false
	}
	return parsed.Choices[0].Message.Content, true
}
