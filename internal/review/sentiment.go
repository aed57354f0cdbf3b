package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	LabelGood = "Good"
	LabelBad  = "Bad"

	defaultGeminiModel = "gemini-2.5-flash"

	sentimentPrompt = "Classify the sentiment of the following movie review. " +
		"Reply with exactly one word, Good or Bad.\n\nReview:\n%s"
)

// Provider is one sentiment backend in the fallback chain.
type Provider interface {
	Name() string
	Classify(ctx context.Context, text string) (string, error)
}

// GeminiProvider classifies review sentiment with the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGeminiProvider(ctx context.Context, apiKey string, logger *zap.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  defaultGeminiModel,
		logger: logger,
	}, nil
}

func (g *GeminiProvider) Name() string {
	return "Gemini"
}

func (g *GeminiProvider) Classify(ctx context.Context, text string) (string, error) {
	temperature := float32(0)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{
			Parts: []*genai.Part{
				{Text: fmt.Sprintf(sentimentPrompt, text)},
			},
		},
	}, &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 8,
	})
	if err != nil {
		return "", err
	}

	answer := extractGeminiText(resp)
	if answer == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return normalizeLabel(answer), nil
}

func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "")
}

// OpenAIProvider is the fallback sentiment backend.
type OpenAIProvider struct {
	client *openai.Client
	logger *zap.Logger
}

func NewOpenAIProvider(apiKey string, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" {
		return nil
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client, logger: logger}
}

func (o *OpenAIProvider) Name() string {
	return "OpenAI"
}

func (o *OpenAIProvider) Classify(ctx context.Context, text string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(fmt.Sprintf(sentimentPrompt, text)),
		},
		MaxCompletionTokens: openai.Int(8),
		Temperature:         openai.Float(0),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in OpenAI response")
	}
	return normalizeLabel(resp.Choices[0].Message.Content), nil
}

// ChainClassifier tries each provider in order and returns the first answer.
type ChainClassifier struct {
	providers []Provider
	logger    *zap.Logger
}

func NewChainClassifier(logger *zap.Logger, providers ...Provider) *ChainClassifier {
	active := make([]Provider, 0, len(providers))
	for _, provider := range providers {
		if provider != nil {
			active = append(active, provider)
		}
	}
	return &ChainClassifier{providers: active, logger: logger}
}

func (c *ChainClassifier) Classify(ctx context.Context, text string) (string, error) {
	var lastErr error
	for _, provider := range c.providers {
		label, err := provider.Classify(ctx, text)
		if err == nil {
			return label, nil
		}
		lastErr = err
		c.logger.Warn("Sentiment provider failed, trying next",
			zap.String("provider", provider.Name()),
			zap.Error(err),
		)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no sentiment providers configured")
	}
	return "", lastErr
}

// normalizeLabel folds a model answer onto the binary label contract.
func normalizeLabel(answer string) string {
	if strings.Contains(strings.ToLower(answer), "good") {
		return LabelGood
	}
	return LabelBad
}
