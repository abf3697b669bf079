package device

import (
	"sync"
	"time"

	"github.com/zulandar/ensemble/internal/call"
)

// Mixer renders scheduled 16-bit mono PCM onto a sample clock. Its Read
// method is the pull side handed to the output device; each Read advances
// the clock by the bytes it returns. Gaps between sources are silence.
type Mixer struct {
	rate int

	mu      sync.Mutex
	clock   int64 // samples rendered so far
	sources []*clip
	closed  bool
}

// NewMixer creates a Mixer for the given sample rate.
func NewMixer(rate int) *Mixer {
	return &Mixer{rate: rate}
}

type clip struct {
	start int64 // first sample on the mixer clock
	pcm   []byte
	once  sync.Once
	done  chan struct{}
	owner *Mixer
}

func (c *clip) end() int64 { return c.start + int64(len(c.pcm)/2) }

func (c *clip) finish() { c.once.Do(func() { close(c.done) }) }

// Stop removes the clip from the mix.
func (c *clip) Stop() {
	c.owner.remove(c)
	c.finish()
}

// Done is closed once the clip has played out or been stopped.
func (c *clip) Done() <-chan struct{} { return c.done }

// Now returns the playback clock.
func (m *Mixer) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toDuration(m.clock)
}

// Schedule queues pcm to start at the given clock time. Times in the past
// start immediately.
func (m *Mixer) Schedule(pcm []byte, at time.Duration) (call.Source, error) {
	c := &clip{pcm: pcm, done: make(chan struct{}), owner: m}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		c.finish()
		return c, nil
	}
	c.start = max(m.toSamples(at), m.clock)
	m.sources = append(m.sources, c)
	return c, nil
}

// Read fills p with the mix for the next len(p)/2 samples.
func (m *Mixer) Read(p []byte) (int, error) {
	n := len(p) &^ 1
	clear(p[:n])

	m.mu.Lock()
	from := m.clock
	to := from + int64(n/2)
	var finished []*clip
	kept := m.sources[:0]
	for _, c := range m.sources {
		lo, hi := max(c.start, from), min(c.end(), to)
		for s := lo; s < hi; s++ {
			src := (s - c.start) * 2
			dst := (s - from) * 2
			v := int32(int16(uint16(p[dst])|uint16(p[dst+1])<<8)) +
				int32(int16(uint16(c.pcm[src])|uint16(c.pcm[src+1])<<8))
			v = min(max(v, -32768), 32767)
			p[dst] = byte(uint16(v))
			p[dst+1] = byte(uint16(v) >> 8)
		}
		if c.end() <= to {
			finished = append(finished, c)
			continue
		}
		kept = append(kept, c)
	}
	clear(m.sources[len(kept):])
	m.sources = kept
	m.clock = to
	m.mu.Unlock()

	for _, c := range finished {
		c.finish()
	}
	return n, nil
}

// Close stops every clip.
func (m *Mixer) Close() error {
	m.mu.Lock()
	m.closed = true
	sources := m.sources
	m.sources = nil
	m.mu.Unlock()
	for _, c := range sources {
		c.finish()
	}
	return nil
}

// Pending reports how many clips are queued or playing.
func (m *Mixer) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sources)
}

func (m *Mixer) remove(c *clip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.sources {
		if s == c {
			m.sources = append(m.sources[:i], m.sources[i+1:]...)
			return
		}
	}
}

func (m *Mixer) toSamples(d time.Duration) int64 {
	return (int64(d)*int64(m.rate) + int64(time.Second)/2) / int64(time.Second)
}

func (m *Mixer) toDuration(samples int64) time.Duration {
	return time.Duration(samples * int64(time.Second) / int64(m.rate))
}
