package ensemble

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/zulandar/ensemble/internal/metrics"
	"github.com/zulandar/ensemble/internal/models"
)

// Synthesizer renders a single utterance as 24 kHz mono PCM.
type Synthesizer interface {
	Synthesize(ctx context.Context, voice string, style models.SpeakingStyle, text string) ([]byte, error)
}

// Service runs user turns: append the user's message, fetch replies, and
// reveal them. Only one turn runs at a time.
type Service struct {
	store     *Store
	fetcher   *Fetcher
	scheduler *Scheduler
	synth     Synthesizer
	apiKey    func() string
	metrics   *metrics.Metrics
	log       zerolog.Logger

	mu   sync.Mutex
	busy bool
	wg   sync.WaitGroup
}

// ServiceOpts holds parameters for creating a Service.
type ServiceOpts struct {
	Store       *Store
	Fetcher     *Fetcher
	Scheduler   *Scheduler
	Synthesizer Synthesizer   // optional; PreviewVoice fails without it
	APIKey      func() string // optional; defaults to Store.APIKey
	Metrics     *metrics.Metrics
	Logger      *zerolog.Logger
}

// NewService creates a Service.
func NewService(opts ServiceOpts) (*Service, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("ensemble: store is required")
	}
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("ensemble: fetcher is required")
	}
	s := &Service{
		store:     opts.Store,
		fetcher:   opts.Fetcher,
		scheduler: opts.Scheduler,
		synth:     opts.Synthesizer,
		apiKey:    opts.APIKey,
		metrics:   opts.Metrics,
		log:       zerolog.Nop(),
	}
	if s.scheduler == nil {
		s.scheduler = NewScheduler(SchedulerOpts{Stage: opts.Store, Metrics: opts.Metrics})
	}
	if s.apiKey == nil {
		s.apiKey = opts.Store.APIKey
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	return s, nil
}

// Store returns the conversation store the service writes to.
func (s *Service) Store() *Store { return s.store }

// HasAPIKey reports whether a backend key is available.
func (s *Service) HasAPIKey() bool { return s.apiKey() != "" }

// Busy reports whether a turn is in flight.
func (s *Service) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Start appends text as a user message and begins fetching and revealing
// replies in the background. ctx bounds the whole turn, not just this call.
// The returned channel is closed when the turn finishes.
func (s *Service) Start(ctx context.Context, text string) (<-chan struct{}, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if !s.HasAPIKey() {
		return nil, ErrNoAPIKey
	}

	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrTurnInFlight
	}
	s.busy = true
	s.mu.Unlock()

	if _, err := s.store.AppendMessage(ctx, models.ChatMessage{
		Author: models.UserAuthor(s.store.Profile()),
		Text:   text,
	}); err != nil {
		s.release()
		return nil, err
	}
	s.store.SetThinking(true)

	done := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		defer s.release()
		s.run(ctx)
	}()
	return done, nil
}

// Send runs a full turn and waits for it to finish.
func (s *Service) Send(ctx context.Context, text string) error {
	done, err := s.Start(ctx, text)
	if err != nil {
		return err
	}
	<-done
	return nil
}

// Wait blocks until any in-flight turn has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) run(ctx context.Context) {
	defer s.store.SetThinking(false)

	replies, err := s.fetcher.Fetch(ctx, s.store.Agents(), s.store.Messages())
	if err != nil {
		s.metrics.Turn("error")
		s.log.Error().Err(err).Msg("reply fetch failed")
		msg := models.ChatMessage{
			Author: models.SystemAuthor(),
			Text:   "An API error occurred. Please check if your API key is valid in the settings.\n\nError: " + errorText(err),
		}
		if _, aerr := s.store.AppendMessage(context.WithoutCancel(ctx), msg); aerr != nil {
			s.log.Error().Err(aerr).Msg("append error message")
		}
		return
	}

	n, err := s.scheduler.Reveal(ctx, replies)
	switch {
	case err != nil && ctx.Err() != nil:
		s.metrics.Turn("canceled")
		s.log.Info().Int("revealed", n).Msg("turn canceled")
	case err != nil:
		s.metrics.Turn("error")
		s.log.Error().Err(err).Int("revealed", n).Msg("reveal failed")
	default:
		s.metrics.Turn("ok")
		s.log.Info().Int("replies", len(replies)).Int("revealed", n).Msg("turn complete")
	}
}

func (s *Service) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// PreviewVoice synthesizes text in the given voice and style. It never
// touches chat state.
func (s *Service) PreviewVoice(ctx context.Context, voice string, style models.SpeakingStyle, text string) ([]byte, error) {
	if s.synth == nil {
		return nil, fmt.Errorf("ensemble: preview voice: no synthesizer configured")
	}
	if !s.HasAPIKey() {
		return nil, ErrNoAPIKey
	}
	if voice == "" {
		voice = models.DefaultVoice
	}
	if style == "" {
		style = models.StyleExpressive
	}
	pcm, err := s.synth.Synthesize(ctx, voice, style, text)
	if err != nil {
		s.metrics.Preview("error")
		return nil, fmt.Errorf("ensemble: preview voice: %w", err)
	}
	s.metrics.Preview("ok")
	return pcm, nil
}

// PreviewText is the sentence an agent speaks for a voice preview.
func PreviewText(a models.Agent) string {
	return fmt.Sprintf("Hello, my name is %s. This is a preview of my voice.", a.Name)
}

// errorText strips this package's wrapping so the System message shows the
// backend's own error text.
func errorText(err error) string {
	return strings.TrimPrefix(err.Error(), "ensemble: fetch replies: ")
}
