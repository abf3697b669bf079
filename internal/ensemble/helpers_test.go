package ensemble

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/zulandar/ensemble/internal/models"
	"github.com/zulandar/ensemble/internal/settings"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testSettings(t *testing.T) *settings.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st, err := settings.New(settings.Opts{DB: db})
	if err != nil {
		t.Fatalf("settings.New: %v", err)
	}
	return st
}

func testStore(t *testing.T) (*Store, *settings.Store) {
	t.Helper()
	st := testSettings(t)
	s, err := Open(context.Background(), StoreOpts{Settings: st})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, st
}

// fakeSleeper records requested durations without waiting. When failAt is
// positive, the failAt-th call returns errSleep.
type fakeSleeper struct {
	mu     sync.Mutex
	calls  []time.Duration
	failAt int
	onCall func()
}

var errSleep = errors.New("sleep interrupted")

func (f *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.calls = append(f.calls, d)
	n := len(f.calls)
	hook := f.onCall
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.failAt > 0 && n == f.failAt {
		return errSleep
	}
	return ctx.Err()
}

func (f *fakeSleeper) durations() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.calls...)
}

// fakeGenerator returns a canned payload and records each request.
type fakeGenerator struct {
	mu      sync.Mutex
	payload string
	err     error
	block   chan struct{}
	systems []string
	prompts []string
}

func (g *fakeGenerator) GenerateReplies(ctx context.Context, system, prompt string) (string, error) {
	g.mu.Lock()
	g.systems = append(g.systems, system)
	g.prompts = append(g.prompts, prompt)
	block := g.block
	g.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.payload, g.err
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func (g *fakeGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

type fakeSynth struct {
	pcm   []byte
	err   error
	voice string
	style models.SpeakingStyle
	text  string
}

func (f *fakeSynth) Synthesize(_ context.Context, voice string, style models.SpeakingStyle, text string) ([]byte, error) {
	f.voice, f.style, f.text = voice, style, text
	return f.pcm, f.err
}

func randFrom(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func inRange(d time.Duration, r Range) bool {
	return d >= r.Min && d < r.Max
}
