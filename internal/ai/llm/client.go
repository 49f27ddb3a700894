// Package llm wraps the Azure OpenAI chat deployment used for screening and
// interview analysis, with a concurrency cap and retry with backoff.
package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/ganeshpalli1/hire-ai-insights-dashboard-sub000/pkg/logx"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
	"golang.org/x/sync/semaphore"
)

var (
	ErrEmptyResponse = errors.New("llm returned no content")
	ErrNotConfigured = errors.New("llm client is not configured")
)

// Request is a single system+user exchange
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
	JSON        bool
}

// Completer is what domain services depend on
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// VisionCompleter transcribes page images
type VisionCompleter interface {
	CompleteWithImages(ctx context.Context, req Request, images [][]byte) (string, error)
}

type Options struct {
	APIKey           string
	Endpoint         string
	APIVersion       string
	Deployment       string
	VisionDeployment string
	MaxTokens        int
	MaxRetries       int
	MaxConcurrent    int
}

// Client talks to an Azure OpenAI deployment
type Client struct {
	client           *openai.Client
	deployment       string
	visionDeployment string
	maxTokens        int
	retry            RetryPolicy
	limiter          *semaphore.Weighted
}

func NewClient(opts Options) *Client {
	client := openai.NewClient(
		azure.WithEndpoint(opts.Endpoint, opts.APIVersion),
		azure.WithAPIKey(opts.APIKey),
		// retries are handled by RetryPolicy so attempts are visible in logs
		option.WithMaxRetries(0),
	)

	maxConcurrent := opts.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	return &Client{
		client:           &client,
		deployment:       opts.Deployment,
		visionDeployment: opts.VisionDeployment,
		maxTokens:        opts.MaxTokens,
		retry:            DefaultRetryPolicy(opts.MaxRetries),
		limiter:          semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Complete sends one chat completion, retrying transient failures
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.User))
	return c.do(ctx, c.deployment, messages, req)
}

// CompleteWithImages sends the prompt together with JPEG page images
func (c *Client) CompleteWithImages(ctx context.Context, req Request, images [][]byte) (string, error) {
	if len(images) == 0 {
		return "", errors.New("no images provided")
	}

	parts := []openai.ChatCompletionContentPartUnionParam{
		{
			OfText: &openai.ChatCompletionContentPartTextParam{
				Type: constant.Text("text"),
				Text: req.User,
			},
		},
	}
	for i, img := range images {
		dataURL := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString(img))
		parts = append(parts, openai.ChatCompletionContentPartUnionParam{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				Type: constant.ImageURL("image_url"),
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{
					URL:    dataURL,
					Detail: "high",
				},
			},
		})
		if i < len(images)-1 {
			parts = append(parts, openai.ChatCompletionContentPartUnionParam{
				OfText: &openai.ChatCompletionContentPartTextParam{
					Type: constant.Text("text"),
					Text: fmt.Sprintf("--- Page %d ends, Page %d begins ---", i+1, i+2),
				},
			})
		}
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfArrayOfContentParts: parts,
			},
		},
	})
	return c.do(ctx, c.visionDeployment, messages, req)
}

func (c *Client) do(ctx context.Context, deployment string, messages []openai.ChatCompletionMessageParamUnion, req Request) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openai.ChatModel(deployment),
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		}
	}

	var content string
	err := c.retry.Do(ctx, func(attempt int) error {
		if err := c.limiter.Acquire(ctx, 1); err != nil {
			return Permanent(err)
		}
		defer c.limiter.Release(1)

		started := time.Now()
		completion, err := c.client.Chat.Completions.New(ctx, params)
		if err != nil {
			logx.Errorf("Azure OpenAI API error (attempt %d): %v", attempt, err)
			return err
		}
		if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
			logx.Errorf("Azure OpenAI returned empty content (attempt %d)", attempt)
			return ErrEmptyResponse
		}

		content = completion.Choices[0].Message.Content
		logx.Debugf("OpenAI response received - content length: %d, took %s", len(content), time.Since(started))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return content, nil
}

// Unconfigured is used when no credentials are present. Every call fails so
// callers take their fallback paths.
type Unconfigured struct{}

func (Unconfigured) Complete(context.Context, Request) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) CompleteWithImages(context.Context, Request, [][]byte) (string, error) {
	return "", ErrNotConfigured
}
