package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrNoJSONObject  = errors.New("no json object in oracle response")
	ErrMissingScore  = errors.New("oracle response has no numeric score")
	ErrScoreOutRange = errors.New("oracle score outside 0..100")
)

// Verdict is a successfully parsed oracle response. Explanation is empty when
// the oracle omitted it or sent a non-string value.
type Verdict struct {
	Score       float64
	Explanation string
}

// ParseVerdict extracts {"score", "explanation"} from free-form oracle text.
// Any error means the caller must fall back to a default score.
func ParseVerdict(raw string) (Verdict, error) {
	cleaned, err := extractJSON(raw)
	if err != nil {
		return Verdict{}, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return Verdict{}, fmt.Errorf("parse oracle response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return Verdict{}, ErrMissingScore
	}
	if score < 0 || score > 100 {
		return Verdict{}, fmt.Errorf("%w: %v", ErrScoreOutRange, score)
	}

	verdict := Verdict{Score: score}
	if explanation, ok := data["explanation"].(string); ok {
		verdict.Explanation = strings.TrimSpace(explanation)
	}

	return verdict, nil
}

// extractJSON strips markdown fences and slices the outermost object.
func extractJSON(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", ErrNoJSONObject
	}

	return raw[start : end+1], nil
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
