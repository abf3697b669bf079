package call

import (
	"context"
	"sync"
	"time"
)

type fakeSource struct {
	once sync.Once
	done chan struct{}
	mu   sync.Mutex
	stop bool
}

func newFakeSource() *fakeSource { return &fakeSource{done: make(chan struct{})} }

func (f *fakeSource) Stop() {
	f.mu.Lock()
	f.stop = true
	f.mu.Unlock()
	f.finish()
}

func (f *fakeSource) finish()               { f.once.Do(func() { close(f.done) }) }
func (f *fakeSource) Done() <-chan struct{} { return f.done }

func (f *fakeSource) stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stop
}

type scheduled struct {
	at  time.Duration
	pcm []byte
	src *fakeSource
}

// fakeSpeaker has a manually advanced clock.
type fakeSpeaker struct {
	mu     sync.Mutex
	now    time.Duration
	items  []scheduled
	closed int
}

func (f *fakeSpeaker) Now() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeSpeaker) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += d
}

func (f *fakeSpeaker) Schedule(pcm []byte, at time.Duration) (Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	src := newFakeSource()
	f.items = append(f.items, scheduled{at: at, pcm: pcm, src: src})
	return src, nil
}

func (f *fakeSpeaker) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeSpeaker) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSpeaker) queue() []scheduled {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]scheduled(nil), f.items...)
}

type fakeMedia struct {
	audio  chan []byte
	frame  []byte
	mu     sync.Mutex
	closed int
	once   sync.Once
}

func (m *fakeMedia) Audio() <-chan []byte { return m.audio }

func (m *fakeMedia) Frame() ([]byte, bool) {
	if m.frame == nil {
		return nil, false
	}
	return m.frame, true
}

func (m *fakeMedia) Close() error {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()
	m.once.Do(func() { close(m.audio) })
	return nil
}

func (m *fakeMedia) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type fakeMediaSource struct {
	media *fakeMedia
	err   error
}

func (f *fakeMediaSource) Open(context.Context) (Media, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.media, nil
}

// stalledMediaSource never finishes opening on its own.
type stalledMediaSource struct {
	opening chan struct{}
}

func (f *stalledMediaSource) Open(ctx context.Context) (Media, error) {
	close(f.opening)
	<-ctx.Done()
	return nil, ctx.Err()
}

// fakeConn delivers scripted server events and records uploads.
type fakeConn struct {
	events chan ServerEvent
	errs   chan error
	closed chan struct{}
	once   sync.Once

	mu     sync.Mutex
	audio  [][]byte
	frames int
	closes int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		events: make(chan ServerEvent, 16),
		errs:   make(chan error, 1),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) SendAudio(pcm []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.audio = append(c.audio, pcm)
	return nil
}

func (c *fakeConn) SendFrame([]byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames++
	return nil
}

func (c *fakeConn) Receive() (ServerEvent, error) {
	select {
	case ev := <-c.events:
		return ev, nil
	case err := <-c.errs:
		return ServerEvent{}, err
	case <-c.closed:
		return ServerEvent{}, context.Canceled
	}
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closes++
	c.mu.Unlock()
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

func (c *fakeConn) uploaded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.audio)
}

type fakeBackend struct {
	conn *fakeConn
	err  error
	mu   sync.Mutex
	cfg  LiveConfig
}

func (b *fakeBackend) Dial(_ context.Context, cfg LiveConfig) (LiveConn, error) {
	b.mu.Lock()
	b.cfg = cfg
	b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	return b.conn, nil
}

func (b *fakeBackend) config() LiveConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}

// pcmOf returns 16-bit mono PCM lasting d at rate Hz.
func pcmOf(d time.Duration, rate int) []byte {
	samples := int(d * time.Duration(rate) / time.Second)
	return make([]byte, samples*2)
}

// stalledBackend never finishes dialing on its own.
type stalledBackend struct {
	dialing chan struct{}
}

func (b *stalledBackend) Dial(ctx context.Context, _ LiveConfig) (LiveConn, error) {
	close(b.dialing)
	<-ctx.Done()
	return nil, ctx.Err()
}
