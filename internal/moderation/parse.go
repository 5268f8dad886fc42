package moderation

import (
	"encoding/json"
	"strings"
	"unicode"
)

const (
	// defaultReasoning fills a parsed JSON object missing its reasoning key.
	defaultReasoning = "LLM analysis completed"
	// fallbackReasoning is used when keyword fallback finds no usable reply lines.
	fallbackReasoning = "LLM analysis"
)

// ParseVerdict interprets the classifier's raw reply text into a
// Verdict. The reply is expected to contain a single JSON object; the
// substring from the first '{' to the last '}' is parsed, with per-key
// defaults for anything missing. If no parsable object exists the
// keyword fallback takes over. ParseVerdict always returns a usable
// verdict.
func ParseVerdict(raw string) Verdict {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return fallbackParse(raw)
	}

	var payload struct {
		Classification *string  `json:"classification"`
		Confidence     *float64 `json:"confidence"`
		Reasoning      *string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return fallbackParse(raw)
	}

	verdict := Verdict{
		Classification: ClassificationContextDependent,
		Confidence:     0.5,
		Reasoning:      defaultReasoning,
	}

	// A value outside the known set counts as missing: letting it
	// through would hit the policy's APPROVE branch.
	if payload.Classification != nil && isKnownClassification(*payload.Classification) {
		verdict.Classification = Classification(*payload.Classification)
	}
	if payload.Confidence != nil {
		verdict.Confidence = clampConfidence(*payload.Confidence)
	}
	if payload.Reasoning != nil && *payload.Reasoning != "" {
		verdict.Reasoning = *payload.Reasoning
	}

	return verdict
}

// fallbackParse scans the reply for classification keywords when no
// JSON object could be extracted. Reasoning is synthesized from reply
// lines written in a non-Latin script, which is where this model tends
// to put its actual explanation.
func fallbackParse(raw string) Verdict {
	var verdict Verdict
	switch {
	case strings.Contains(raw, string(ClassificationClearViolation)):
		verdict.Classification = ClassificationClearViolation
		verdict.Confidence = 0.8
	case strings.Contains(raw, string(ClassificationApproved)):
		verdict.Classification = ClassificationApproved
		verdict.Confidence = 0.7
	default:
		verdict.Classification = ClassificationContextDependent
		verdict.Confidence = 0.6
	}

	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if len([]rune(trimmed)) > 10 && containsNonLatinLetter(trimmed) {
			parts = append(parts, trimmed)
			if len(parts) == 2 {
				break
			}
		}
	}

	if len(parts) > 0 {
		verdict.Reasoning = strings.Join(parts, " ")
	} else {
		verdict.Reasoning = fallbackReasoning
	}

	return verdict
}

func isKnownClassification(s string) bool {
	switch Classification(s) {
	case ClassificationApproved, ClassificationContextDependent, ClassificationClearViolation:
		return true
	}
	return false
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func containsNonLatinLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.Is(unicode.Latin, r) {
			return true
		}
	}
	return false
}
