package gemini

import "strings"

// Section markers requested by the video prompt.
const (
	MarkerSpeech      = "[FALA]:"
	MarkerScreenText  = "[TEXTO]:"
	MarkerDescription = "[DESCRIÇÃO VISUAL]:"
)

var failurePhrases = []string{"não foi possível", "erro", "não detectado"}

// EstimateConfidence scores a Gemini response heuristically. The model
// reports no confidence of its own.
func EstimateConfidence(text string) float64 {
	confidence := 0.8
	if strings.Contains(text, MarkerSpeech) ||
		strings.Contains(text, MarkerScreenText) ||
		strings.Contains(text, MarkerDescription) {
		confidence += 0.1
	}
	if len([]rune(strings.TrimSpace(text))) < 50 {
		confidence -= 0.2
	}
	lower := strings.ToLower(text)
	for _, phrase := range failurePhrases {
		if strings.Contains(lower, phrase) {
			confidence -= 0.4
			break
		}
	}

	if confidence < 0.1 {
		return 0.1
	}
	if confidence > 0.95 {
		return 0.95
	}
	return confidence
}
