package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zulandar/ensemble/internal/models"
	"google.golang.org/genai"
)

// ErrNoAudio is returned when the speech model answers without audio.
var ErrNoAudio = errors.New("no audio data received")

// SpeechPrompt prefixes text with a tone instruction for the speaking style.
func SpeechPrompt(style models.SpeakingStyle, text string) string {
	return fmt.Sprintf("(Speaking in a %s tone): %s", strings.ToLower(string(style)), text)
}

// Synthesize renders text as 24 kHz mono PCM in the given prebuilt voice.
func (c *Client) Synthesize(ctx context.Context, voice string, style models.SpeakingStyle, text string) ([]byte, error) {
	gc, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := gc.Models.GenerateContent(ctx, c.speechModel, genai.Text(SpeechPrompt(style, text)), &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	if pcm := inlineAudio(resp); len(pcm) > 0 {
		return pcm, nil
	}
	return nil, ErrNoAudio
}

func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
			return p.InlineData.Data
		}
	}
	return nil
}
