// Package judge is the client adapter for the external evaluator model. It
// speaks the chat-completions HTTP contract and returns the judge's raw text;
// parsing the verdict out of that text is the verdict package's job.
package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// #region config

// Config holds every knob for the evaluator endpoint. It is passed in at
// construction; there is no package-level client state.
type Config struct {
	BaseURL     string // full chat-completions URL
	Model       string
	Temperature float64
	Timeout     time.Duration // per-call timeout, applied on top of the caller's ctx
	MaxRetries  int           // retries after the first attempt
}

// DefaultConfig returns the stock evaluator configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:     "http://localhost:8000/v1/chat/completions",
		Model:       "Qwen2.5-72B-Instruct-GPTQ-Int4",
		Temperature: 0.8,
		Timeout:     60 * time.Second,
		MaxRetries:  2,
	}
}

// #endregion config

// #region wire-types

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// #endregion wire-types

// #region client

// Client calls the evaluator over HTTP.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates a judge client from an explicit config.
func NewClient(config Config) *Client {
	return &Client{
		config: config,
		http:   &http.Client{},
	}
}

// NewClientWithHTTP creates a judge client with an injected HTTP client.
// Used for testing.
func NewClientWithHTTP(config Config, hc *http.Client) *Client {
	return &Client{config: config, http: hc}
}

// #endregion client

// #region evaluate

const systemPrompt = "You are an advanced language model performing self-assessment after a question-answering session."

// Evaluate sends the constructed evaluation prompt for one record and returns
// the judge's free-text reply. Transport failures, non-2xx statuses, and
// replies missing choices[0].message.content are evaluation failures and
// propagate to the caller; the attempt is retried up to MaxRetries times with
// linear backoff.
func (c *Client) Evaluate(ctx context.Context, question, contextText, answer string) (string, error) {
	prompt := EvalPrompt(question, contextText, answer)

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		reply, err := c.call(ctx, prompt)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("evaluate after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	callCtx := ctx
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: c.config.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post %s: %w", c.config.BaseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("evaluator status %d: %s", resp.StatusCode, snippet)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("evaluator response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// #endregion evaluate
