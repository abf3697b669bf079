package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/zulandar/ensemble/internal/call"
)

// Speaker plays call audio through the default output device.
type Speaker struct {
	*Mixer
	player *oto.Player
	once   sync.Once
}

// otoContext is process-wide: oto allows a single context per process.
var (
	otoOnce sync.Once
	otoCtx  *oto.Context
	otoErr  error
	otoRate int
)

// NewSpeaker opens the output device at rate Hz, mono, signed 16-bit.
func NewSpeaker(rate int) (*Speaker, error) {
	otoOnce.Do(func() {
		otoRate = rate
		var ready chan struct{}
		otoCtx, ready, otoErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   100 * time.Millisecond,
		})
		if otoErr == nil {
			<-ready
		}
	})
	if otoErr != nil {
		return nil, fmt.Errorf("device: open speaker: %w", otoErr)
	}
	if rate != otoRate {
		return nil, fmt.Errorf("device: open speaker: output already opened at %d Hz", otoRate)
	}

	s := &Speaker{Mixer: NewMixer(rate)}
	s.player = otoCtx.NewPlayer(s.Mixer)
	s.player.Play()
	return s, nil
}

// Close stops playback and releases the player.
func (s *Speaker) Close() error {
	var err error
	s.once.Do(func() {
		s.player.Pause()
		_ = s.Mixer.Close()
		err = s.player.Close()
	})
	return err
}

var _ call.Speaker = (*Speaker)(nil)
