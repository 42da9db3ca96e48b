package whisper

import (
	"math"
	"strings"

	"media-transcriber/internal/app/api/provider"
)

// SegmentScore carries the per-segment scores of a verbose_json response.
type SegmentScore struct {
	AvgLogprob   float64
	NoSpeechProb float64
}

// Confidence converts the average log probability into a probability. Servers
// that do not report scores send zero, which yields def.
func (s SegmentScore) Confidence(def float64) float64 {
	if s.AvgLogprob == 0 {
		return def
	}
	return provider.ClampConfidence(math.Exp(s.AvgLogprob) * (1 - s.NoSpeechProb))
}

// EstimateConfidence averages segment confidences. Without scored segments
// the engine default is returned.
func EstimateConfidence(scores []SegmentScore, def float64) float64 {
	var sum float64
	var n int
	for _, s := range scores {
		if s.AvgLogprob == 0 {
			continue
		}
		sum += s.Confidence(def)
		n++
	}
	if n == 0 {
		return def
	}
	return sum / float64(n)
}

var languageNames = map[string]string{
	"portuguese": "pt",
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"chinese":    "zh",
	"japanese":   "ja",
	"korean":     "ko",
	"russian":    "ru",
}

// NormalizeLanguage turns a detected language ("portuguese", "pt") into a
// code. Unknown names are returned lower-cased.
func NormalizeLanguage(language string) string {
	l := strings.ToLower(strings.TrimSpace(language))
	if code, ok := languageNames[l]; ok {
		return code
	}
	return l
}

// BaseLanguage strips a region suffix: "pt-BR" becomes "pt".
func BaseLanguage(language string) string {
	l := strings.TrimSpace(language)
	if i := strings.IndexAny(l, "-_"); i > 0 {
		l = l[:i]
	}
	return strings.ToLower(l)
}
