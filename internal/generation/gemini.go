package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kdduha/audioflow/internal/config"
	"github.com/kdduha/audioflow/internal/models"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

type Gemini struct {
	client *genai.Client
	model  string
	logger zerolog.Logger
}

func NewGemini(ctx context.Context, cfg config.GeminiConfig, logger zerolog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: cfg.BaseURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  cfg.Model,
		logger: logger.With().Str("component", "gemini").Str("model", cfg.Model).Logger(),
	}, nil
}

func (g *Gemini) Model() string {
	return g.model
}

// Generate sends one non-streaming generateContent call.
func (g *Gemini) Generate(ctx context.Context, req models.GenerationRequest) (string, error) {
	contents, cfg, err := buildGeminiReq(req)
	if err != nil {
		return "", err
	}

	start := time.Now()
	g.logger.Debug().
		Str("mime_type", req.Media.MIMEType).
		Int("payload_bytes", len(req.Media.Data)).
		Int32("max_output_tokens", req.MaxOutputTokens).
		Msg("sending generate request")

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	evt := g.logger.Info().Dur("duration", time.Since(start))
	if resp.UsageMetadata != nil {
		evt = evt.
			Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount).
			Int32("output_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}
	if len(resp.Candidates) > 0 {
		evt = evt.Str("finish_reason", string(resp.Candidates[0].FinishReason))
		if resp.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
			g.logger.Warn().Msg("response hit the output token budget and is likely truncated")
		}
	}
	evt.Msg("generate request finished")

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

var _ Generator = (*Gemini)(nil)
