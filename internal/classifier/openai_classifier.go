package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/moodlog/internal/models"
)

// DefaultModel is the model used when the config does not name one.
const DefaultModel = "gpt-4o-mini"

type sentimentResponse struct {
	Candidates []models.SentimentScore `json:"candidates"`
}

// OpenAIClassifier asks an OpenAI-compatible chat endpoint to score text.
// The endpoint is the opaque inference capability: this type only shapes the
// request and parses the structured response.
type OpenAIClassifier struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewOpenAIClassifier(apiKey, baseURL, model string, maxTokens int, temperature float64, logger *zap.Logger) *OpenAIClassifier {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIClassifier{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Ping verifies the inference endpoint is reachable. Called once at startup;
// a failure leaves the service running in degraded mode.
func (c *OpenAIClassifier) Ping(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("inference endpoint unreachable: %w", err)
	}
	return nil
}

func (c *OpenAIClassifier) Classify(ctx context.Context, text string) ([]models.SentimentScore, error) {
	prompt := fmt.Sprintf(`Classify the sentiment of the following text as POSITIVE or NEGATIVE.

Return the response as a JSON object with this structure, candidates ordered from most to least likely:
{
    "candidates": [
        {"label": "POSITIVE", "score": 0.98},
        {"label": "NEGATIVE", "score": 0.02}
    ]
}

Scores are confidences between 0.0 and 1.0.

Text: %s`, text)

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: float32(c.temperature),
		},
	)
	if err != nil {
		c.logger.Error("Failed to get model response", zap.Error(err))
		return nil, fmt.Errorf("inference call failed: %w", err)
	}

	var parsed sentimentResponse
	response := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		c.logger.Error("Failed to parse model response",
			zap.Error(err),
			zap.String("response", response))
		return nil, fmt.Errorf("malformed inference response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, fmt.Errorf("inference response contained no candidates")
	}

	return parsed.Candidates, nil
}
