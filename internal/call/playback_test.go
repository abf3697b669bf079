package call

import (
	"testing"
	"time"
)

const outRate = 24000

func TestPCMDuration(t *testing.T) {
	tests := []struct {
		bytes int
		rate  int
		want  time.Duration
	}{
		{48000, 24000, time.Second},
		{32000, 16000, time.Second},
		{4800, 24000, 100 * time.Millisecond},
		{0, 24000, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		if got := PCMDuration(make([]byte, tt.bytes), tt.rate); got != tt.want {
			t.Errorf("PCMDuration(%d bytes, %d Hz) = %v, want %v", tt.bytes, tt.rate, got, tt.want)
		}
	}
}

func TestPlayback_Gapless(t *testing.T) {
	sp := &fakeSpeaker{now: 500 * time.Millisecond}
	p := NewPlayback(sp, outRate)

	durs := []time.Duration{200 * time.Millisecond, 100 * time.Millisecond, 300 * time.Millisecond, 50 * time.Millisecond}
	var prevEnd time.Duration
	for i, d := range durs {
		start, err := p.Enqueue(pcmOf(d, outRate))
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		if i == 0 && start != sp.Now() {
			t.Errorf("first start = %v, want now %v", start, sp.Now())
		}
		if i > 0 && start != prevEnd {
			t.Errorf("chunk %d start = %v, want previous end %v", i, start, prevEnd)
		}
		prevEnd = start + d
		// Chunks arrive faster than they play.
		sp.advance(10 * time.Millisecond)
	}
	if p.Cursor() != prevEnd {
		t.Errorf("Cursor = %v, want %v", p.Cursor(), prevEnd)
	}
	if p.Pending() != len(durs) {
		t.Errorf("Pending = %d, want %d", p.Pending(), len(durs))
	}
}

func TestPlayback_IdleGap(t *testing.T) {
	sp := &fakeSpeaker{}
	p := NewPlayback(sp, outRate)

	first, _ := p.Enqueue(pcmOf(100*time.Millisecond, outRate))
	sp.advance(time.Second)
	second, _ := p.Enqueue(pcmOf(100*time.Millisecond, outRate))

	if second < first+100*time.Millisecond {
		t.Errorf("second start %v overlaps first end %v", second, first+100*time.Millisecond)
	}
	if second != time.Second {
		t.Errorf("second start = %v, want now (1s) after an idle gap", second)
	}
}

func TestPlayback_Interrupt(t *testing.T) {
	sp := &fakeSpeaker{now: time.Second}
	p := NewPlayback(sp, outRate)
	for i := 0; i < 3; i++ {
		if _, err := p.Enqueue(pcmOf(time.Second, outRate)); err != nil {
			t.Fatal(err)
		}
	}

	p.Interrupt()

	if p.Pending() != 0 {
		t.Errorf("Pending after interrupt = %d, want 0", p.Pending())
	}
	if p.Cursor() != 0 {
		t.Errorf("Cursor after interrupt = %v, want 0", p.Cursor())
	}
	for i, it := range sp.queue() {
		if !it.src.stopped() {
			t.Errorf("source %d not stopped", i)
		}
	}

	sp.advance(250 * time.Millisecond)
	start, _ := p.Enqueue(pcmOf(100*time.Millisecond, outRate))
	if start != sp.Now() {
		t.Errorf("start after interrupt = %v, want now %v", start, sp.Now())
	}
}

func TestPlayback_FinishedSourcesLeaveSet(t *testing.T) {
	sp := &fakeSpeaker{}
	p := NewPlayback(sp, outRate)
	if _, err := p.Enqueue(pcmOf(10*time.Millisecond, outRate)); err != nil {
		t.Fatal(err)
	}
	sp.queue()[0].src.finish()

	deadline := time.Now().Add(2 * time.Second)
	for p.Pending() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("finished source never removed from pending set")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestPlayback_EmptyChunk(t *testing.T) {
	sp := &fakeSpeaker{now: time.Second}
	p := NewPlayback(sp, outRate)
	if _, err := p.Enqueue(nil); err != nil {
		t.Fatal(err)
	}
	if len(sp.queue()) != 0 || p.Cursor() != 0 {
		t.Error("empty chunk should not be scheduled")
	}
}
