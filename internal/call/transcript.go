package call

import (
	"strings"

	"github.com/zulandar/ensemble/internal/models"
)

// Transcriber accumulates incremental transcription until the turn ends.
type Transcriber struct {
	input  strings.Builder
	output strings.Builder
	lines  []models.Transcript
}

// AddInput appends transcribed user speech.
func (t *Transcriber) AddInput(text string) { t.input.WriteString(text) }

// AddOutput appends transcribed agent speech.
func (t *Transcriber) AddOutput(text string) { t.output.WriteString(text) }

// Complete closes the current turn. It records the non-blank user line and
// then the non-blank agent line, resets both accumulators, and returns the
// lines it recorded.
func (t *Transcriber) Complete() []models.Transcript {
	var out []models.Transcript
	if s := t.input.String(); strings.TrimSpace(s) != "" {
		out = append(out, models.Transcript{Author: models.SpeakerUser, Text: s})
	}
	if s := t.output.String(); strings.TrimSpace(s) != "" {
		out = append(out, models.Transcript{Author: models.SpeakerAgent, Text: s})
	}
	t.input.Reset()
	t.output.Reset()
	t.lines = append(t.lines, out...)
	return out
}

// Lines returns every recorded line.
func (t *Transcriber) Lines() []models.Transcript {
	return append([]models.Transcript(nil), t.lines...)
}
