package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"docqa/internal/prompt"
)

// OpenAIClient calls the OpenAI Chat Completions API.
type OpenAIClient struct {
	model  openai.ChatModel
	client *openai.Client
}

// NewOpenAIClient builds a client against api.openai.com unless opts
// override the base URL. The SDK's automatic retries are disabled.
func NewOpenAIClient(apiKey string, model openai.ChatModel, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key required", ErrAuthentication)
	}
	if model == "" {
		model = openai.ChatModelGPT4
	}
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	cli := openai.NewClient(reqOpts...)
	return &OpenAIClient{
		model:  model,
		client: &cli,
	}, nil
}

// NewOpenAIFactory returns a Factory producing OpenAI clients for model.
func NewOpenAIFactory(model string, opts ...option.RequestOption) Factory {
	return func(credential string) (Client, error) {
		return NewOpenAIClient(credential, openai.ChatModel(model), opts...)
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req prompt.Request) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("%w: nil openai client", ErrTransport)
	}
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    buildMessages(req.Instruction),
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: no choices returned", ErrTransport)
	}
	return resp.Choices[0].Message.Content, nil
}

func buildMessages(user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(user),
				},
			},
		},
	}
}

// classify maps SDK failures onto the package's error taxonomy.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuthentication, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimit, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
