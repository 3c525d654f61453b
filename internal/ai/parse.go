package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/terra-clan/ats-engine/internal/models"
)

// Analysis is the structured evaluation returned by the model.
// Scores is kept raw; keys and values are not trusted yet.
type Analysis struct {
	Score      float64        `json:"score"`
	Scores     map[string]any `json:"scores"`
	Summary    string         `json:"summary"`
	Highlights []string       `json:"highlights"`
}

var fenceRe = regexp.MustCompile("(?i)```(?:json)?[ \t]*\n?")

// ParseAnalysis extracts an Analysis from a free-text model reply
func ParseAnalysis(text string) (*Analysis, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return nil, err
	}

	score, ok := obj["score"].(float64)
	if !ok {
		return nil, fmt.Errorf("%w: field \"score\" must be a number", ErrMalformedResponse)
	}

	scores, ok := obj["scores"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: field \"scores\" must be an object", ErrMalformedResponse)
	}

	summary, ok := obj["summary"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: field \"summary\" must be a string", ErrMalformedResponse)
	}

	rawHighlights, ok := obj["highlights"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: field \"highlights\" must be an array", ErrMalformedResponse)
	}

	highlights := make([]string, 0, len(rawHighlights))
	for _, h := range rawHighlights {
		if s, ok := h.(string); ok {
			highlights = append(highlights, s)
		}
	}

	return &Analysis{
		Score:      score,
		Scores:     scores,
		Summary:    summary,
		Highlights: highlights,
	}, nil
}

// ParseCandidateInfo extracts contact fields from a model reply.
// Fields that are missing or not strings come back empty.
func ParseCandidateInfo(text string) (models.CandidateInfo, error) {
	obj, err := decodeObject(text)
	if err != nil {
		return models.CandidateInfo{}, err
	}

	str := func(key string) string {
		s, _ := obj[key].(string)
		return strings.TrimSpace(s)
	}

	return models.CandidateInfo{
		Name:  str("name"),
		Email: models.NormalizeEmail(str("email")),
		Phone: str("phone"),
	}, nil
}

// decodeObject strips markdown fences and decodes the reply as a JSON
// object, falling back to the first balanced {...} span that decodes.
func decodeObject(text string) (map[string]any, error) {
	cleaned := strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))
	if cleaned == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedResponse)
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil && obj != nil {
		return obj, nil
	}

	for offset := 0; offset < len(cleaned); {
		span, start := firstObjectSpan(cleaned[offset:])
		if span == "" {
			break
		}
		obj = nil
		if err := json.Unmarshal([]byte(span), &obj); err == nil && obj != nil {
			return obj, nil
		}
		offset += start + 1
	}

	return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
}

// firstObjectSpan returns the first balanced {...} span in s and its start
// offset. Braces inside JSON strings are ignored.
func firstObjectSpan(s string) (string, int) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], start
			}
		}
	}

	return "", -1
}
