package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/zulandar/ensemble/internal/call"
	"github.com/zulandar/ensemble/internal/ensemble"
	"github.com/zulandar/ensemble/internal/models"
	"github.com/zulandar/ensemble/internal/settings"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeGenerator struct {
	mu      sync.Mutex
	payload string
	err     error
	block   chan struct{}
}

func (f *fakeGenerator) GenerateReplies(ctx context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.payload, f.err
}

type fakeSynth struct {
	pcm []byte
	err error

	mu    sync.Mutex
	voice string
	style models.SpeakingStyle
	text  string
}

func (f *fakeSynth) Synthesize(_ context.Context, voice string, style models.SpeakingStyle, text string) ([]byte, error) {
	f.mu.Lock()
	f.voice, f.style, f.text = voice, style, text
	f.mu.Unlock()
	return f.pcm, f.err
}

type testEnv struct {
	srv   *Server
	http  *httptest.Server
	svc   *ensemble.Service
	store *ensemble.Store
	gen   *fakeGenerator
	synth *fakeSynth
}

type envOpts struct {
	live call.LiveBackend
}

func newEnv(t *testing.T, opts envOpts) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st, err := settings.New(settings.Opts{DB: db})
	if err != nil {
		t.Fatal(err)
	}
	store, err := ensemble.Open(context.Background(), ensemble.StoreOpts{Settings: st})
	if err != nil {
		t.Fatal(err)
	}

	gen := &fakeGenerator{payload: `{"responses":[]}`}
	fetcher, err := ensemble.NewFetcher(ensemble.FetcherOpts{Generator: gen})
	if err != nil {
		t.Fatal(err)
	}
	synth := &fakeSynth{pcm: []byte{1, 0, 2, 0}}
	svc, err := ensemble.NewService(ensemble.ServiceOpts{
		Store:       store,
		Fetcher:     fetcher,
		Scheduler:   ensemble.NewScheduler(ensemble.SchedulerOpts{Stage: store, Delays: &ensemble.Delays{}}),
		Synthesizer: synth,
	})
	if err != nil {
		t.Fatal(err)
	}
	srv, err := New(Opts{Service: svc, Live: opts.live})
	if err != nil {
		t.Fatal(err)
	}
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		hs.Close()
		svc.Wait()
	})
	return &testEnv{srv: srv, http: hs, svc: svc, store: store, gen: gen, synth: synth}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.http.URL+path, r)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func (e *testEnv) setKey(t *testing.T) {
	t.Helper()
	if err := e.store.SetAPIKey(context.Background(), "test-key"); err != nil {
		t.Fatal(err)
	}
}

func wantStatus(t *testing.T, resp *http.Response, body []byte, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s status = %d, want %d (body %s)", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want, body)
	}
}

var errBackend = errors.New("backend unavailable")
