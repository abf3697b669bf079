package call

import (
	"context"
	"errors"
	"time"
)

// ErrRemoteClosed is returned by LiveConn.Receive when the backend ends the
// session normally.
var ErrRemoteClosed = errors.New("call: remote closed the session")

// LiveConfig negotiates a live session.
type LiveConfig struct {
	Voice             string
	SystemInstruction string
	InputSampleRate   int  // PCM rate sent upstream
	OutputSampleRate  int  // PCM rate received
	Transcribe        bool // request input and output transcription
}

// LiveBackend opens streaming sessions.
type LiveBackend interface {
	// Dial opens a live session configured by cfg.
	Dial(ctx context.Context, cfg LiveConfig) (LiveConn, error)
}

// LiveConn is one open streaming session.
type LiveConn interface {
	// SendAudio streams one chunk of 16-bit mono PCM upstream.
	SendAudio(pcm []byte) error

	// SendFrame streams one JPEG video frame upstream.
	SendFrame(jpeg []byte) error

	// Receive blocks for the next server message. It returns
	// ErrRemoteClosed when the backend ends the session.
	Receive() (ServerEvent, error)

	// Close ends the session.
	Close() error
}

// ServerEvent is one decoded server message. Fields are handled in the
// order transcripts, turn completion, audio, interruption.
type ServerEvent struct {
	InputText    string   // incremental transcription of the user's speech
	OutputText   string   // incremental transcription of the agent's speech
	TurnComplete bool     // the agent finished its turn
	Audio        [][]byte // PCM chunks at the output sample rate
	Interrupted  bool     // the agent's speech was cut off
}

// MediaSource acquires capture devices.
type MediaSource interface {
	// Open starts capture. Failure here fails the call.
	Open(ctx context.Context) (Media, error)
}

// Media is an open capture session.
type Media interface {
	// Audio delivers 16-bit mono PCM chunks at the input sample rate. The
	// channel is closed when capture stops.
	Audio() <-chan []byte

	// Frame returns the most recent JPEG frame, if video is available.
	Frame() ([]byte, bool)

	// Close stops capture and releases the devices.
	Close() error
}

// Speaker plays scheduled PCM on a monotonic playback clock.
type Speaker interface {
	// Now returns the current playback clock.
	Now() time.Duration

	// Schedule plays pcm starting at the given clock time.
	Schedule(pcm []byte, at time.Duration) (Source, error)

	// Close stops all playback and releases the output device.
	Close() error
}

// Source is one scheduled chunk of audio.
type Source interface {
	// Stop cuts playback short. Stopping a finished source is a no-op.
	Stop()

	// Done is closed when the source finishes or is stopped.
	Done() <-chan struct{}
}
