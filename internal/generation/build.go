package generation

import (
	"fmt"

	"github.com/kdduha/audioflow/internal/media"
	"github.com/kdduha/audioflow/internal/models"
	"google.golang.org/genai"
)

const jsonMIMEType = "application/json"

func buildGeminiReq(req models.GenerationRequest) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	raw, err := media.Decode(req.Media)
	if err != nil {
		return nil, nil, fmt.Errorf("decode media payload: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(raw, req.Media.MIMEType),
			genai.NewPartFromText(req.UserInstruction),
		}, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: req.MaxOutputTokens,
	}
	if req.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.ResponseFormat == models.ResponseFormatJSON {
		cfg.ResponseMIMEType = jsonMIMEType
	}
	return contents, cfg, nil
}

// responseText joins the visible text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		text += part.Text
	}
	return text
}
