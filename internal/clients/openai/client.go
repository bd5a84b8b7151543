package openai

import (
	"context"
	"fmt"
	"github.com/maxaizer/realjobs/internal/clients/ratelimit"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	goopenai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
	"net/http"
	"time"
)

const DefaultModel = goopenai.GPT4oMini

const (
	temperature = 0.3
	maxTokens   = 10
)

type Client struct {
	ratelimit.Limits
	client            *goopenai.Client
	model             string
	systemInstruction string
	retryDelay        time.Duration
}

func NewClient(apiKey string, model string) *Client {
	return NewClientWithConfig(goopenai.DefaultConfig(apiKey), model)
}

func NewClientWithConfig(cfg goopenai.ClientConfig, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		client:     goopenai.NewClientWithConfig(cfg),
		model:      model,
		retryDelay: 2 * time.Second,
	}
}

func (c *Client) SetSystemInstruction(instruction string) {
	c.systemInstruction = instruction
}

func (c *Client) GenerateResponse(ctx context.Context, text string) (string, error) {

	var resp string
	var err error

	_, _, _ = lo.AttemptWhileWithDelay(3, c.retryDelay, func(i int, _ time.Duration) (error, bool) {
		if i > 0 {
			log.Warn("openai api returned server error, retrying...")
		}
		resp, err = c.waitAndGenerateResponse(ctx, text)
		return err, isServerError(err)
	})

	return resp, err
}

func (c *Client) waitAndGenerateResponse(ctx context.Context, text string) (string, error) {
	if err := c.Wait(ctx); err != nil {
		return "", err
	}

	var messages []goopenai.ChatCompletionMessage
	if c.systemInstruction != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: c.systemInstruction,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: text,
	})

	response, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return response.Choices[0].Message.Content, nil
}

func isServerError(err error) bool {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	return false
}
