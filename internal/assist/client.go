package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mailpane/mailpane/internal/instrumentation"
	"github.com/mailpane/mailpane/internal/logging"
)

// secureHTTPClient is a configured HTTP client with proper timeouts and security settings
var secureHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DisableKeepAlives:     false,
	},
}

// Generative API wire types.
type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Client calls the generative language API to draft email replies.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	apiKey     string
	logger     *slog.Logger
	metrics    *instrumentation.Metrics
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client, used in tests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = logger }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *instrumentation.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a generative API client. endpoint is the API base
// (through /v1beta), model the model identifier, apiKey the caller's key.
func NewClient(endpoint, model, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: secureHTTPClient,
		endpoint:   endpoint,
		model:      model,
		apiKey:     apiKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateReply sends the prompt and returns the drafted reply with
// markdown and AI meta-text stripped.
func (c *Client) GenerateReply(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordAssistRequest(ctx, instrumentation.StatusError)
		return "", fmt.Errorf("generate request failed: %w", err)
	}
	defer res.Body.Close()

	var decoded generateResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		c.metrics.RecordAssistRequest(ctx, instrumentation.StatusError)
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if decoded.Error != nil {
		c.metrics.RecordAssistRequest(ctx, instrumentation.StatusError)
		return "", fmt.Errorf("generate failed: %s (%s)", decoded.Error.Message, decoded.Error.Status)
	}
	if res.StatusCode != http.StatusOK {
		c.metrics.RecordAssistRequest(ctx, instrumentation.StatusError)
		return "", fmt.Errorf("generate failed: http status %s", res.Status)
	}

	text := firstCandidateText(decoded)
	if text == "" {
		c.metrics.RecordAssistRequest(ctx, instrumentation.StatusError)
		return "", fmt.Errorf("no reply candidates returned")
	}

	c.metrics.RecordAssistRequest(ctx, instrumentation.StatusSuccess)
	c.logger.Debug("reply drafted",
		logging.Operation("generateReply"),
		slog.Duration("elapsed", time.Since(start)))

	return CleanResponse(text), nil
}

func firstCandidateText(res generateResponse) string {
	if len(res.Candidates) == 0 {
		return ""
	}
	parts := res.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}
