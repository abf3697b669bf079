package device

import (
	"encoding/binary"
	"testing"
	"time"
)

const rate = 24000

func tone(samples int, v int16) []byte {
	b := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		binary.LittleEndian.PutUint16(b[i*2:], uint16(v))
	}
	return b
}

func sampleAt(p []byte, i int) int16 {
	return int16(binary.LittleEndian.Uint16(p[i*2:]))
}

func TestMixer_ClockAdvancesWithReads(t *testing.T) {
	m := NewMixer(rate)
	if m.Now() != 0 {
		t.Fatalf("Now = %v, want 0", m.Now())
	}
	buf := make([]byte, 2400*2)
	if n, _ := m.Read(buf); n != len(buf) {
		t.Fatalf("Read = %d, want %d", n, len(buf))
	}
	if m.Now() != 100*time.Millisecond {
		t.Errorf("Now = %v, want 100ms", m.Now())
	}
}

func TestMixer_SilenceWhenIdle(t *testing.T) {
	m := NewMixer(rate)
	buf := tone(100, 5)
	m.Read(buf)
	for i := 0; i < 100; i++ {
		if sampleAt(buf, i) != 0 {
			t.Fatalf("sample %d = %d, want silence", i, sampleAt(buf, i))
		}
	}
}

func TestMixer_PlaysAtScheduledTime(t *testing.T) {
	m := NewMixer(rate)
	at := time.Duration(10) * time.Second / rate
	src, err := m.Schedule(tone(5, 100), at)
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 20*2)
	m.Read(buf)
	for i := 0; i < 20; i++ {
		want := int16(0)
		if i >= 10 && i < 15 {
			want = 100
		}
		if got := sampleAt(buf, i); got != want {
			t.Errorf("sample %d = %d, want %d", i, got, want)
		}
	}
	select {
	case <-src.Done():
	default:
		t.Error("clip not done after playing out")
	}
	if m.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", m.Pending())
	}
}

func TestMixer_SpansReads(t *testing.T) {
	m := NewMixer(rate)
	src, _ := m.Schedule(tone(30, 7), 0)
	buf := make([]byte, 20*2)
	m.Read(buf)
	select {
	case <-src.Done():
		t.Fatal("clip done before finishing")
	default:
	}
	m.Read(buf)
	if sampleAt(buf, 9) != 7 || sampleAt(buf, 10) != 0 {
		t.Errorf("tail = %d,%d, want 7,0", sampleAt(buf, 9), sampleAt(buf, 10))
	}
	<-src.Done()
}

func TestMixer_PastStartPlaysNow(t *testing.T) {
	m := NewMixer(rate)
	m.Read(make([]byte, 100*2))
	m.Schedule(tone(1, 9), 0)
	buf := make([]byte, 4)
	m.Read(buf)
	if sampleAt(buf, 0) != 9 {
		t.Errorf("sample = %d, want 9", sampleAt(buf, 0))
	}
}

func TestMixer_OverlapClamps(t *testing.T) {
	m := NewMixer(rate)
	m.Schedule(tone(4, 30000), 0)
	m.Schedule(tone(4, 30000), 0)
	m.Schedule(tone(4, -30000), 0)
	buf := make([]byte, 8)
	m.Read(buf)
	if got := sampleAt(buf, 0); got != 30000 {
		t.Errorf("sample = %d, want 30000", got)
	}

	m.Schedule(tone(1, 30000), m.Now())
	m.Schedule(tone(1, 30000), m.Now())
	buf = make([]byte, 2)
	m.Read(buf)
	if got := sampleAt(buf, 0); got != 32767 {
		t.Errorf("clamped sample = %d, want 32767", got)
	}
}

func TestMixer_StopRemovesClip(t *testing.T) {
	m := NewMixer(rate)
	src, _ := m.Schedule(tone(10, 50), 0)
	src.Stop()
	src.Stop()
	<-src.Done()
	buf := make([]byte, 20)
	m.Read(buf)
	if sampleAt(buf, 0) != 0 {
		t.Error("stopped clip still audible")
	}
}

func TestMixer_Close(t *testing.T) {
	m := NewMixer(rate)
	a, _ := m.Schedule(tone(10, 1), 0)
	m.Close()
	<-a.Done()
	b, _ := m.Schedule(tone(10, 1), 0)
	<-b.Done()
	if m.Pending() != 0 {
		t.Errorf("Pending = %d after Close", m.Pending())
	}
}

func TestMixer_OddRead(t *testing.T) {
	m := NewMixer(rate)
	if n, _ := m.Read(make([]byte, 5)); n != 4 {
		t.Errorf("Read = %d, want 4", n)
	}
}
