package call

import (
	"fmt"
	"sync"
	"time"
)

// PCMDuration returns the play time of 16-bit mono PCM at rate Hz.
func PCMDuration(pcm []byte, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	samples := len(pcm) / 2
	return time.Duration(samples) * time.Second / time.Duration(rate)
}

// Playback schedules incoming audio back to back on a Speaker. Each chunk
// starts at max(now, cursor) and advances the cursor by its duration, so
// chunks never overlap and only leave gaps when the stream itself stalls.
type Playback struct {
	speaker Speaker
	rate    int

	mu      sync.Mutex
	cursor  time.Duration
	nextID  uint64
	sources map[uint64]Source
}

// NewPlayback creates a Playback for PCM at rate Hz.
func NewPlayback(speaker Speaker, rate int) *Playback {
	return &Playback{
		speaker: speaker,
		rate:    rate,
		sources: make(map[uint64]Source),
	}
}

// Enqueue schedules pcm and returns the clock time it will start at.
func (p *Playback) Enqueue(pcm []byte) (time.Duration, error) {
	if len(pcm) == 0 {
		return 0, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	start := max(p.speaker.Now(), p.cursor)
	src, err := p.speaker.Schedule(pcm, start)
	if err != nil {
		return 0, fmt.Errorf("call: schedule audio: %w", err)
	}
	p.cursor = start + PCMDuration(pcm, p.rate)
	id := p.nextID
	p.nextID++
	p.sources[id] = src

	go func() {
		<-src.Done()
		p.mu.Lock()
		delete(p.sources, id)
		p.mu.Unlock()
	}()
	return start, nil
}

// Interrupt stops every scheduled source, forgets them, and resets the
// cursor so the next chunk starts immediately.
func (p *Playback) Interrupt() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, src := range p.sources {
		src.Stop()
	}
	clear(p.sources)
	p.cursor = 0
}

// Pending returns how many scheduled sources have not finished.
func (p *Playback) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sources)
}

// Cursor returns the clock time at which the next chunk would start if the
// speaker were idle.
func (p *Playback) Cursor() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}
