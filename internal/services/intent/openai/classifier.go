// Package openai implements the intent classifier on top of the OpenAI chat
// completions API with tool calling.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/rs/zerolog"

	"github.com/tripwise/travel-agent/internal/domain/models"
	"github.com/tripwise/travel-agent/internal/metrics"
	"github.com/tripwise/travel-agent/internal/pkg/logging"
	"github.com/tripwise/travel-agent/internal/services/intent"
)

// Defaults for chat completion parameters.
const (
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// Config configures a Classifier.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Catalog     *intent.Catalog
	// Cities are named in the system prompt.
	Cities     []string
	HTTPClient *http.Client
}

// Classifier asks a chat completion model to either answer or pick a function.
type Classifier struct {
	client       oai.Client
	model        string
	temperature  float64
	maxTokens    int
	catalog      *intent.Catalog
	tools        []oai.ChatCompletionToolParam
	systemPrompt string
	logger       zerolog.Logger
}

// New creates a Classifier. SDK retries are disabled; Classify retries once by itself.
func New(cfg Config) (*Classifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.Catalog == nil {
		cfg.Catalog = intent.DefaultCatalog()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Classifier{
		client:       oai.NewClient(opts...),
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		catalog:      cfg.Catalog,
		tools:        toolParams(cfg.Catalog),
		systemPrompt: intent.SystemPrompt(cfg.Cities),
		logger:       logging.WithComponent("intent"),
	}, nil
}

func toolParams(catalog *intent.Catalog) []oai.ChatCompletionToolParam {
	var tools []oai.ChatCompletionToolParam
	for _, f := range catalog.Functions() {
		tools = append(tools, oai.ChatCompletionToolParam{
			Function: oai.FunctionDefinitionParam{
				Name:        f.Name,
				Description: param.NewOpt(f.Description),
				Parameters:  oai.FunctionParameters(f.ParametersMap()),
			},
		})
	}
	return tools
}

// Classify implements intent.Classifier.
func (c *Classifier) Classify(ctx context.Context, history []models.Turn) (intent.Decision, error) {
	params := oai.ChatCompletionNewParams{
		Model:       oai.ChatModel(c.model),
		Messages:    c.messages(history),
		Tools:       c.tools,
		ToolChoice:  oai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: param.NewOpt("auto")},
		Temperature: param.NewOpt(c.temperature),
		MaxTokens:   param.NewOpt(int64(c.maxTokens)),
	}

	resp, err := c.complete(ctx, params)
	if err != nil && retryable(ctx, err) {
		c.logger.Warn().Err(err).Msg("Transient classifier failure, retrying once")
		resp, err = c.complete(ctx, params)
	}
	if err != nil {
		metrics.ClassifierRequestsTotal.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: %w", intent.ErrServiceUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		metrics.ClassifierRequestsTotal.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: completion has no choices", intent.ErrServiceUnavailable)
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call := msg.ToolCalls[0]
		args := json.RawMessage(call.Function.Arguments)
		if err := c.catalog.Validate(call.Function.Name, args); err != nil {
			metrics.ClassifierRequestsTotal.WithLabelValues("invalid_arguments").Inc()
			return nil, err
		}
		metrics.ClassifierRequestsTotal.WithLabelValues("function_call").Inc()
		return intent.FunctionCall{ID: call.ID, Name: call.Function.Name, Arguments: args}, nil
	}

	if msg.Content == "" {
		metrics.ClassifierRequestsTotal.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: empty completion", intent.ErrServiceUnavailable)
	}
	metrics.ClassifierRequestsTotal.WithLabelValues("reply").Inc()
	return intent.PlainReply{Text: msg.Content}, nil
}

func (c *Classifier) complete(ctx context.Context, params oai.ChatCompletionNewParams) (*oai.ChatCompletion, error) {
	start := time.Now()
	defer func() { metrics.ClassifierLatency.Observe(time.Since(start).Seconds()) }()
	return c.client.Chat.Completions.New(ctx, params)
}

// messages converts the session history into chat messages behind the system prompt.
func (c *Classifier) messages(history []models.Turn) []oai.ChatCompletionMessageParamUnion {
	out := make([]oai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	out = append(out, oai.SystemMessage(c.systemPrompt))
	for _, t := range history {
		switch {
		case t.Role == models.RoleUser:
			out = append(out, oai.UserMessage(t.Content))
		case t.Role == models.RoleAssistant && t.ToolCall != nil:
			args := string(t.ToolCall.Arguments)
			if args == "" {
				args = "{}"
			}
			out = append(out, oai.ChatCompletionMessageParamUnion{
				OfAssistant: &oai.ChatCompletionAssistantMessageParam{
					ToolCalls: []oai.ChatCompletionMessageToolCallParam{{
						ID: t.ToolCall.ID,
						Function: oai.ChatCompletionMessageToolCallFunctionParam{
							Name:      t.ToolCall.Name,
							Arguments: args,
						},
					}},
				},
			})
		case t.Role == models.RoleAssistant:
			out = append(out, oai.AssistantMessage(t.Content))
		case t.Role == models.RoleTool:
			out = append(out, oai.ToolMessage(t.Content, t.ToolCallID))
		}
	}
	return out
}

// retryable reports whether a failed call may be repeated: transport errors,
// rate limiting and server errors qualify, cancellation does not.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}
