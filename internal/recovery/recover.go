package recovery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/kdduha/audioflow/internal/models"
)

var ErrUnparseable = errors.New("model response could not be parsed")

type Parser struct {
	Strategies     []Strategy
	MissingSummary string
}

func New(missingSummary string) *Parser {
	return &Parser{
		Strategies:     DefaultStrategies(),
		MissingSummary: missingSummary,
	}
}

// Recover runs the strategies in order and returns the first candidate that
// decodes to a JSON object, together with the name of the strategy that found
// it. A missing summary is replaced by MissingSummary, a missing xml becomes "".
func (p *Parser) Recover(raw string) (models.DiagramDraft, string, error) {
	var tried []string
	for _, s := range p.Strategies {
		candidate, ok := s.Extract(raw)
		if !ok {
			continue
		}
		obj, err := decodeObject(candidate)
		if err != nil {
			tried = append(tried, s.Name)
			continue
		}
		return p.draftFrom(obj), s.Name, nil
	}

	if len(tried) == 0 {
		return models.DiagramDraft{}, "", fmt.Errorf("%w: no JSON found", ErrUnparseable)
	}
	return models.DiagramDraft{}, "", fmt.Errorf("%w: tried %s", ErrUnparseable, strings.Join(tried, ", "))
}

func (p *Parser) draftFrom(obj map[string]interface{}) models.DiagramDraft {
	draft := models.DiagramDraft{Summary: p.MissingSummary}
	if s, ok := obj["summary"].(string); ok && strings.TrimSpace(s) != "" {
		draft.Summary = s
	}
	if x, ok := obj["xml"].(string); ok {
		draft.XML = x
	}
	return draft
}

func decodeObject(candidate string) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := sonic.UnmarshalString(candidate, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("not a JSON object")
	}
	return obj, nil
}
