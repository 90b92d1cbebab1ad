package inference

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"resty.dev/v3"

	"jan-server/services/proposal-api/internal/domain/proposal"
	"jan-server/services/proposal-api/internal/infrastructure/metrics"
	"jan-server/services/proposal-api/internal/utils/platformerrors"
)

const (
	scannerInitialBuffer = 12 * 1024
	scannerMaxBuffer     = 10 * 1024 * 1024
	dataPrefix           = "data: "
	doneMarker           = "[DONE]"
	defaultTimeout       = 120 * time.Second
)

// Config configures the generation client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	// Timeout bounds one generation, including the time spent reading a stream.
	Timeout time.Duration
}

// Client calls an OpenAI compatible chat completions endpoint.
type Client struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
	log     zerolog.Logger
}

var _ proposal.Generator = (*Client)(nil)

func NewClient(client *resty.Client, cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: timeout,
		log:     log.With().Str("component", "generation-client").Logger(),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) buildRequest(params proposal.GenerationParams, stream bool) openai.ChatCompletionRequest {
	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: params.System},
			{Role: openai.ChatMessageRoleUser, Content: params.User},
		},
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		Stream:      stream,
	}
	if stream {
		request.StreamOptions = &openai.StreamOptions{IncludeUsage: true}
	}
	return request
}

// Complete runs a one-shot generation.
func (c *Client) Complete(ctx context.Context, params proposal.GenerationParams) (proposal.GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var respBody openai.ChatCompletionResponse
	resp, err := c.prepareRequest(ctx).
		SetBody(c.buildRequest(params, false)).
		SetResult(&respBody).
		Post(c.endpoint("/chat/completions"))
	if err != nil {
		return proposal.GenerationResult{Model: c.model}, c.transportError(ctx, err)
	}
	if resp.IsError() {
		return proposal.GenerationResult{Model: c.model}, c.errorFromResponse(ctx, resp, "generation request failed")
	}

	result := proposal.GenerationResult{
		Model:            firstNonEmpty(respBody.Model, c.model),
		PromptTokens:     respBody.Usage.PromptTokens,
		CompletionTokens: respBody.Usage.CompletionTokens,
	}
	if len(respBody.Choices) > 0 {
		result.Text = respBody.Choices[0].Message.Content
	}
	if strings.TrimSpace(result.Text) == "" {
		return result, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "generation returned no text", proposal.ErrGenerationFailed, "5b7d9f1a-3c4e-4a60-8b2d-6e8f0a2c4e71")
	}
	return result, nil
}

// Stream issues the upstream request synchronously so connection and status errors
// surface before any text is sent, then reads the stream on a goroutine detached
// from ctx. onComplete fires once when the upstream stream ends.
func (c *Client) Stream(ctx context.Context, params proposal.GenerationParams, onComplete proposal.CompletionFunc) (proposal.TextStream, error) {
	streamCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)

	resp, err := c.doStreamingRequest(streamCtx, c.buildRequest(params, true))
	if err != nil {
		cancel()
		return nil, err
	}

	stream := newStream()
	go func() {
		defer cancel()
		result, readErr := c.readStream(streamCtx, resp.RawResponse.Body, stream)
		stream.close()
		if onComplete != nil {
			onComplete(result, readErr)
		}
	}()
	return stream, nil
}

func (c *Client) readStream(ctx context.Context, body io.ReadCloser, stream *Stream) (proposal.GenerationResult, error) {
	defer func() {
		if closeErr := body.Close(); closeErr != nil {
			c.log.Error().Err(closeErr).Msg("unable to close response body")
		}
	}()

	result := proposal.GenerationResult{Model: c.model}
	var text strings.Builder
	started := time.Now()
	firstChunk := true
	sawDone := false

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, scannerInitialBuffer), scannerMaxBuffer)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			result.Text = text.String()
			return result, err
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, dataPrefix) {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		if data == doneMarker {
			sawDone = true
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			c.log.Warn().Err(err).Msg("failed to parse stream chunk")
			continue
		}
		if chunk.Error != nil {
			result.Text = text.String()
			c.log.Warn().Str("upstream_error", chunk.Error.Message).Msg("generation stream reported an error")
			return result, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "generation stream failed", errors.Join(proposal.ErrGenerationFailed, chunk.Error), "2e4a6c8d-0f1b-4c3d-9e5f-7a9b1c3d5e60")
		}
		if chunk.Model != "" {
			result.Model = chunk.Model
		}
		if chunk.Usage != nil {
			result.PromptTokens = chunk.Usage.PromptTokens
			result.CompletionTokens = chunk.Usage.CompletionTokens
		}

		var delta strings.Builder
		for _, choice := range chunk.Choices {
			delta.WriteString(choice.Delta.Content)
		}
		if delta.Len() == 0 {
			continue
		}

		if firstChunk {
			metrics.RecordFirstChunk(result.Model, time.Since(started).Seconds())
			firstChunk = false
		}
		// the caller sees exactly what is accumulated
		text.WriteString(delta.String())
		stream.publish(ctx, delta.String())
	}

	result.Text = text.String()
	if err := scanner.Err(); err != nil {
		return result, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "read generation stream", errors.Join(proposal.ErrGenerationFailed, err), "8a0c2e4f-6b1d-4e3a-b5c7-9d1f3a5b7c82")
	}
	if !sawDone {
		return result, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "generation stream ended before completion", proposal.ErrGenerationFailed, "f3b5d7e9-1a2c-4d4e-8f6a-0b2c4d6e8fa1")
	}
	return result, nil
}

// streamChunk is one SSE event. Upstreams report failures mid-stream as an
// event carrying only an error object.
type streamChunk struct {
	openai.ChatCompletionStreamResponse
	Error *openai.APIError `json:"error,omitempty"`
}

func (c *Client) prepareRequest(ctx context.Context) *resty.Request {
	req := c.client.R().SetContext(ctx)
	req.SetHeader("Content-Type", "application/json")
	if strings.TrimSpace(c.apiKey) != "" {
		req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	return req
}

func (c *Client) doStreamingRequest(ctx context.Context, request openai.ChatCompletionRequest) (*resty.Response, error) {
	resp, err := c.prepareRequest(ctx).
		SetBody(request).
		SetHeader("Accept", "text/event-stream").
		SetHeader("Accept-Encoding", "identity").
		SetDoNotParseResponse(true).
		Post(c.endpoint("/chat/completions"))
	if err != nil {
		return nil, c.transportError(ctx, err)
	}
	if resp.IsError() {
		return nil, c.errorFromResponse(ctx, resp, "streaming request failed")
	}
	if resp.RawResponse == nil || resp.RawResponse.Body == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "streaming request failed: empty response body", proposal.ErrGenerationFailed, "9d1f3b5c-7e8a-4c02-a4b6-0c2e4a6c8e93")
	}
	return resp, nil
}

func (c *Client) endpoint(path string) string {
	if c.baseURL == "" {
		return path
	}
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "generation timed out", errors.Join(proposal.ErrGenerationFailed, err), "1e3a5c7e-9f0b-4d24-86a8-2e4c6e8a0b15")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, "generation request failed", errors.Join(proposal.ErrGenerationFailed, err), "6f8b0d2e-4a5c-4e76-9c1e-3a5c7e9b1d37")
}

func (c *Client) errorFromResponse(ctx context.Context, resp *resty.Response, message string) error {
	status := statusCode(resp)
	if status == http.StatusTooManyRequests {
		message = "generation service rate limited"
	}
	fields := map[string]any{"status": status}

	if resp != nil && resp.RawResponse != nil && resp.RawResponse.Body != nil {
		defer resp.RawResponse.Body.Close()
		if body, err := io.ReadAll(io.LimitReader(resp.RawResponse.Body, 4096)); err == nil {
			if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
				fields["upstream_body"] = trimmed
			}
		}
	}
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeExternal, message, proposal.ErrGenerationFailed, "a1f46e0d-4017-4411-ac05-987946c3066d", fields)
}

func statusCode(resp *resty.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
