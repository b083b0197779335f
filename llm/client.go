package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/logger"
)

const (
	defaultTimeout      = 60 * time.Second
	streamHeaderTimeout = 30 * time.Second
	maxErrorBodyBytes   = 4 << 10
	chatCompletionsPath = "/chat/completions"
	authorizationPrefix = "Bearer "
	contentTypeJSON     = "application/json"
	acceptEventStream   = "text/event-stream"
)

// Client talks to an OpenAI-compatible chat completions endpoint
type Client struct {
	cfg          config.LLM
	httpClient   *http.Client
	streamClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for both blocking and streaming calls
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.streamClient = hc
	}
}

// WithBaseURL overrides the configured base URL
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.cfg.BaseURL = u
	}
}

// NewClient validates cfg and returns a client. No network activity happens here.
func NewClient(cfg config.LLM, opts ...Option) (*Client, error) {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = streamHeaderTimeout
	c.streamClient = &http.Client{Transport: transport}

	for _, opt := range opts {
		opt(c)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Config returns the settings the client was built with
func (c *Client) Config() config.LLM {
	return c.cfg
}

// NewRequest returns a request carrying the configured model and sampling defaults
func (c *Client) NewRequest(messages ...Message) *Request {
	return &Request{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
}

// Complete sends a single user prompt and returns the reply text
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.Chat(ctx, c.NewRequest(Message{Role: "user", Content: prompt}))
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

// Chat performs one blocking completion call
func (c *Client) Chat(ctx context.Context, req *Request) (*Response, error) {
	body := *req
	body.Stream = false

	httpResp, err := c.do(ctx, c.httpClient, &body)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var out chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponseFormat, err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrResponseFormat)
	}

	choice := out.Choices[0]
	logger.Debug("LLM", fmt.Sprintf("completion finished: model=%s finish_reason=%s", out.Model, choice.FinishReason))
	return &Response{
		Message:      choice.Message,
		FinishReason: choice.FinishReason,
		Usage:        out.Usage,
	}, nil
}

// Stream performs one streaming completion call. The caller must Close the reader.
func (c *Client) Stream(ctx context.Context, req *Request) (*StreamReader, error) {
	body := *req
	body.Stream = true

	httpResp, err := c.do(ctx, c.streamClient, &body)
	if err != nil {
		return nil, err
	}
	return newStreamReader(httpResp.Body), nil
}

func (c *Client) endpoint() string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + chatCompletionsPath
}

func (c *Client) do(ctx context.Context, hc *http.Client, body *Request) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.endpoint()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	httpReq.Header.Set("Authorization", authorizationPrefix+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	if body.Stream {
		httpReq.Header.Set("Accept", acceptEventStream)
	}

	logger.Debug("LLM", fmt.Sprintf("POST %s model=%s messages=%d stream=%t", url, body.Model, len(body.Messages), body.Stream))

	resp, err := hc.Do(httpReq)
	if err != nil {
		logger.Error("LLM", fmt.Sprintf("request failed: %v", err))
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		statusErr := &HTTPStatusError{
			StatusCode: resp.StatusCode,
			URL:        url,
			Body:       strings.TrimSpace(string(b)),
		}
		logger.Error("LLM", statusErr.Error())
		return nil, statusErr
	}
	return resp, nil
}
