package agents

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// extractJSON unmarshals the first JSON object found in an LLM response.
// Handles fenced code blocks and leading/trailing prose around the object.
func extractJSON(content string, out any) error {
	obj := firstJSONObject(content)
	if obj == "" {
		return fmt.Errorf("no JSON object found in response")
	}
	if err := json.Unmarshal([]byte(obj), out); err != nil {
		return fmt.Errorf("failed to parse JSON from response: %w", err)
	}
	return nil
}

// firstJSONObject returns the first balanced {...} in s, or "".
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
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
				return s[start : i+1]
			}
		}
	}
	return ""
}

var confidenceRe = regexp.MustCompile(`(?i)confidence\s*(?:score)?\s*[:=]?\s*\**\s*(\d+(?:\.\d+)?)\s*/?\s*(?:10)?`)

// parseConfidence extracts the confidence score from the final report text.
// The score is clamped to the 0-10 scale. Returns false when absent.
func parseConfidence(report string) (float64, bool) {
	m := confidenceRe.FindStringSubmatch(report)
	if m == nil {
		return 0, false
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	if score < 0 {
		score = 0
	}
	if score > 10 {
		score = 10
	}
	return score, true
}
