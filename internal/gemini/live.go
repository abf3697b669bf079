package gemini

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/zulandar/ensemble/internal/call"
	"google.golang.org/genai"
)

// Dial opens a live audio session.
func (c *Client) Dial(ctx context.Context, cfg call.LiveConfig) (call.LiveConn, error) {
	gc, err := c.client(ctx)
	if err != nil {
		return nil, err
	}
	sess, err := gc.Live.Connect(ctx, c.liveModel, LiveConnectConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("gemini: live connect: %w", err)
	}
	c.log.Info().Str("model", c.liveModel).Str("voice", cfg.Voice).Msg("live session opened")
	return &liveConn{sess: sess, inRate: cfg.InputSampleRate}, nil
}

// LiveConnectConfig maps call parameters to the live session setup.
func LiveConnectConfig(cfg call.LiveConfig) *genai.LiveConnectConfig {
	lc := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.Voice},
			},
		},
	}
	if cfg.SystemInstruction != "" {
		lc.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser)
	}
	if cfg.Transcribe {
		lc.InputAudioTranscription = &genai.AudioTranscriptionConfig{}
		lc.OutputAudioTranscription = &genai.AudioTranscriptionConfig{}
	}
	return lc
}

// ServerEvent maps one live server message to a call event.
func ServerEvent(msg *genai.LiveServerMessage) call.ServerEvent {
	var ev call.ServerEvent
	if msg == nil || msg.ServerContent == nil {
		return ev
	}
	sc := msg.ServerContent
	if sc.OutputTranscription != nil {
		ev.OutputText = sc.OutputTranscription.Text
	}
	if sc.InputTranscription != nil {
		ev.InputText = sc.InputTranscription.Text
	}
	ev.TurnComplete = sc.TurnComplete
	if sc.ModelTurn != nil {
		for _, p := range sc.ModelTurn.Parts {
			if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
				ev.Audio = append(ev.Audio, p.InlineData.Data)
			}
		}
	}
	ev.Interrupted = sc.Interrupted
	return ev
}

type liveConn struct {
	sess   *genai.Session
	inRate int
}

func (l *liveConn) SendAudio(pcm []byte) error {
	return l.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: pcm, MIMEType: fmt.Sprintf("audio/pcm;rate=%d", l.inRate)},
	})
}

func (l *liveConn) SendFrame(jpeg []byte) error {
	return l.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Video: &genai.Blob{Data: jpeg, MIMEType: "image/jpeg"},
	})
}

func (l *liveConn) Receive() (call.ServerEvent, error) {
	msg, err := l.sess.Receive()
	if err != nil {
		if isNormalClose(err) {
			return call.ServerEvent{}, call.ErrRemoteClosed
		}
		return call.ServerEvent{}, err
	}
	return ServerEvent(msg), nil
}

func (l *liveConn) Close() error {
	err := l.sess.Close()
	if errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}

func isNormalClose(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}
