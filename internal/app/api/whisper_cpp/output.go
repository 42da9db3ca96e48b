package whisper_cpp

import (
	"encoding/json"
	"os"
	"strings"

	"media-transcriber/internal/app/api/provider"
)

// cliOutput mirrors the file written by `whisper-cli -oj` (or -ojf, which
// adds per-token probabilities).
type cliOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text   string `json:"text"`
		Tokens []struct {
			Text string  `json:"text"`
			P    float64 `json:"p"`
		} `json:"tokens"`
	} `json:"transcription"`
}

func readOutput(path string) (*cliOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out cliOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// segments converts millisecond offsets to seconds. Token probabilities,
// when present, become the segment confidence.
func (o *cliOutput) segments(def float64) ([]provider.Segment, []float64) {
	segments := make([]provider.Segment, 0, len(o.Transcription))
	var probs []float64
	for _, t := range o.Transcription {
		var segProbs []float64
		for _, tok := range t.Tokens {
			// Special tokens such as [_BEG_] carry no speech.
			if strings.HasPrefix(tok.Text, "[_") {
				continue
			}
			segProbs = append(segProbs, tok.P)
		}
		probs = append(probs, segProbs...)

		segments = append(segments, provider.Segment{
			Start:      float64(t.Offsets.From) / 1000,
			End:        float64(t.Offsets.To) / 1000,
			Text:       strings.TrimSpace(t.Text),
			Confidence: EstimateConfidence(segProbs, def),
		})
	}
	return segments, probs
}

func (o *cliOutput) text() string {
	parts := make([]string, 0, len(o.Transcription))
	for _, t := range o.Transcription {
		if s := strings.TrimSpace(t.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// EstimateConfidence averages token probabilities, or returns def when the
// output carries none.
func EstimateConfidence(tokenProbs []float64, def float64) float64 {
	if len(tokenProbs) == 0 {
		return def
	}
	var sum float64
	for _, p := range tokenProbs {
		sum += p
	}
	return provider.ClampConfidence(sum / float64(len(tokenProbs)))
}
