package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/zulandar/ensemble/internal/call"
)

// Microphone captures 16-bit mono PCM from the default input device.
type Microphone struct {
	SampleRate int // defaults to call.DefaultInputSampleRate
	Buffer     int // queued chunks before capture drops audio; defaults to 64
}

// Open starts capture. Video is not captured, so Frame never has a frame.
func (m Microphone) Open(ctx context.Context) (call.Media, error) {
	rate := m.SampleRate
	if rate <= 0 {
		rate = call.DefaultInputSampleRate
	}
	buffer := m.Buffer
	if buffer <= 0 {
		buffer = 64
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("device: init audio context: %w", err)
	}

	c := &capture{ctx: mctx, audio: make(chan []byte, buffer)}

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatS16
	cfg.Capture.Channels = 1
	cfg.SampleRate = uint32(rate)
	cfg.PeriodSizeInMilliseconds = 20

	dev, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{Data: c.onData})
	if err != nil {
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("device: open microphone: %w", err)
	}
	c.dev = dev
	if err := dev.Start(); err != nil {
		dev.Uninit()
		_ = mctx.Uninit()
		mctx.Free()
		return nil, fmt.Errorf("device: start microphone: %w", err)
	}
	return c, nil
}

type capture struct {
	ctx *malgo.AllocatedContext
	dev *malgo.Device

	mu     sync.Mutex
	audio  chan []byte
	closed bool
	once   sync.Once
}

func (c *capture) onData(_, input []byte, _ uint32) {
	if len(input) == 0 {
		return
	}
	chunk := append([]byte(nil), input...)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.audio <- chunk:
	default:
	}
}

func (c *capture) Audio() <-chan []byte { return c.audio }

func (c *capture) Frame() ([]byte, bool) { return nil, false }

func (c *capture) Close() error {
	var err error
	c.once.Do(func() {
		_ = c.dev.Stop()
		c.dev.Uninit()
		err = c.ctx.Uninit()
		c.ctx.Free()

		c.mu.Lock()
		c.closed = true
		close(c.audio)
		c.mu.Unlock()
	})
	return err
}

var _ call.MediaSource = Microphone{}
