// Package gemini implements the Gemini API client used to classify
// messages. It renders the moderation prompt and performs a single
// generation call per message; interpreting the reply is the caller's
// concern.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/edgard/sentinela/internal/config"
)

// Client defines the classifier interface used by the moderation
// pipeline. Classify returns the model's raw reply text, which is
// expected (but not guaranteed) to contain a single JSON object.
type Client interface {
	Classify(ctx context.Context, content, historyDigest string) (string, error)
}

type sdkClient struct {
	genaiClient   *genai.Client
	log           *slog.Logger
	contentConfig *genai.GenerateContentConfig
	modelName     string
	rules         string
}

// NewClient creates a new Gemini classifier client with the provided
// configuration and moderation rules text.
func NewClient(ctx context.Context, cfg config.GeminiConfig, rules string, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if rules == "" {
		return nil, fmt.Errorf("moderation rules text is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	contentConfig := &genai.GenerateContentConfig{
		Temperature: &temperature,

		// Moderation must see the message as-is; blocking the prompt
		// would turn violations into silent non-verdicts.
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.ModelName)
	return &sdkClient{
		genaiClient:   gi,
		log:           logger,
		contentConfig: contentConfig,
		modelName:     cfg.ModelName,
		rules:         rules,
	}, nil
}

// Classify sends the rendered moderation prompt for one message and
// returns the raw reply text. The call is made exactly once; retry and
// fallback policy belong to the caller.
func (c *sdkClient) Classify(ctx context.Context, content, historyDigest string) (string, error) {
	prompt := fmt.Sprintf(ModerationPromptTemplate, c.rules, historyDigest, content)
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	c.log.DebugContext(ctx, "Requesting classification", "content_length", len(content), "has_history", historyDigest != "")

	resp, err := c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, c.contentConfig)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini classification call failed", "error", err)
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	return c.extractTextFromResponse(ctx, resp)
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("classification blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("classification returned no content, finish reason: %s", finishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("classification returned empty text")
	}

	return text, nil
}
