package geminiapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-logr/logr"
)

// DefaultBaseURL is the production endpoint for the Generative Language API.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

const apiKeyHeader = "x-goog-api-key"

// Client issues calls against the Generative Language API. It is stateless
// per call and safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        logr.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets the HTTP client used for outbound requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request-level debug logging.
func WithLogger(log logr.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a Client authenticating with the given API key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateContent creates a model response for the given conversation.
// It performs exactly one call; retries, if any, are the caller's concern.
func (c *Client) GenerateContent(ctx context.Context, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	if req == nil {
		return nil, &APIError{Message: "request must not be nil"}
	}
	if req.Model == "" {
		return nil, &APIError{Message: "request model must not be empty"}
	}

	c.log.V(1).Info("generateContent", "model", req.Model, "contents", len(req.Contents))

	httpResp, err := c.post(ctx, fmt.Sprintf("/v1/models/%s:generateContent", req.Model), req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode/100 != 2 {
		return nil, c.errorFromResponse(httpResp)
	}

	var out GenerateContentResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, &NetworkError{APIError: APIError{Message: "failed to decode response", Cause: err}}
	}

	// Blocked prompts come back 200 with a block reason and no candidates.
	if fb := out.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return nil, &ContentFilterError{ProviderError: ProviderError{
			APIError:  APIError{Message: fmt.Sprintf("prompt blocked: %s", fb.BlockReason)},
			ErrorCode: fb.BlockReason,
		}}
	}
	return &out, nil
}

// ResponseStream is a finite, non-restartable sequence of partial
// responses. Recv returns io.EOF when the provider closes the stream.
// Abandoning consumption requires Close to release the connection.
type ResponseStream interface {
	Recv() (*GenerateContentResponse, error)
	Close() error
}

// StreamGenerateContent opens a streaming model response for the given
// conversation. Each received element is the state of generation at one
// emission point.
func (c *Client) StreamGenerateContent(ctx context.Context, req *GenerateContentRequest) (ResponseStream, error) {
	if req == nil {
		return nil, &APIError{Message: "request must not be nil"}
	}
	if req.Model == "" {
		return nil, &APIError{Message: "request model must not be empty"}
	}

	c.log.V(1).Info("streamGenerateContent", "model", req.Model, "contents", len(req.Contents))

	httpResp, err := c.post(ctx, fmt.Sprintf("/v1/models/%s:streamGenerateContent?alt=sse", req.Model), req)
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode/100 != 2 {
		defer httpResp.Body.Close()
		return nil, c.errorFromResponse(httpResp)
	}

	return newSSEStream(httpResp.Body), nil
}

// EmbedContent creates an embedding vector for the input content.
func (c *Client) EmbedContent(ctx context.Context, req *EmbedContentRequest) (*EmbedContentResponse, error) {
	if req == nil {
		return nil, &APIError{Message: "request must not be nil"}
	}
	if req.Model == "" {
		return nil, &APIError{Message: "request model must not be empty"}
	}
	if len(req.Content.Parts) == 0 {
		return nil, &APIError{Message: "embedding input must not be empty"}
	}

	httpResp, err := c.post(ctx, fmt.Sprintf("/v1/models/%s:embedContent", req.Model), req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode/100 != 2 {
		return nil, c.errorFromResponse(httpResp)
	}

	var out EmbedContentResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return nil, &NetworkError{APIError: APIError{Message: "failed to decode response", Cause: err}}
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &APIError{Message: "failed to encode request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &APIError{Message: "failed to build request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(apiKeyHeader, c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &RequestTimeoutError{APIError: APIError{Message: "request timed out", Cause: err}}
		}
		return nil, &NetworkError{APIError: APIError{Message: "request failed", Cause: err}}
	}
	return httpResp, nil
}

// errorFromResponse drains an error response body and maps it into the
// typed error hierarchy. The provider reports errors as
// {"error": {"code", "message", "status"}}.
func (c *Client) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	message := fmt.Sprintf("unexpected status %d", resp.StatusCode)
	errorCode := ""
	var raw map[string]interface{}

	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
		errorCode = envelope.Error.Status
		_ = json.Unmarshal(body, &raw)
	}

	c.log.V(1).Info("provider error", "status", resp.StatusCode, "code", errorCode)

	return ErrorFromStatusCode(resp.StatusCode, message, errorCode, raw)
}
