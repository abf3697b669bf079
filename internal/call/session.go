package call

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zulandar/ensemble/internal/metrics"
	"github.com/zulandar/ensemble/internal/models"
	"github.com/zulandar/ensemble/internal/persona"
)

// Default media parameters.
const (
	DefaultInputSampleRate  = 16000
	DefaultOutputSampleRate = 24000
	DefaultFrameRate        = 2
)

// Observer receives call updates. Every field is optional. Callbacks run on
// session goroutines and must not block.
type Observer struct {
	OnState      func(State, error)
	OnTranscript func(models.Transcript)
	OnAudio      func(start time.Duration, pcm []byte)
	OnInterrupt  func()
}

// Session is one live call with an agent.
type Session struct {
	id       string
	agent    models.Agent
	backend  LiveBackend
	media    MediaSource
	speaker  Speaker
	inRate   int
	outRate  int
	frameGap time.Duration
	observer Observer
	metrics  *metrics.Metrics
	log      zerolog.Logger

	mu          sync.Mutex
	state       State
	err         error
	started     time.Time
	transcripts Transcriber
	playback    *Playback

	hangup      chan struct{}
	hangupOnce  sync.Once
	releaseOnce sync.Once
	closers     []func() error
}

// SessionOpts holds parameters for creating a Session.
type SessionOpts struct {
	Agent            models.Agent
	Backend          LiveBackend
	Media            MediaSource
	Speaker          Speaker
	InputSampleRate  int // defaults to DefaultInputSampleRate
	OutputSampleRate int // defaults to DefaultOutputSampleRate
	FrameRate        int // frames per second; defaults to DefaultFrameRate
	Observer         Observer
	Metrics          *metrics.Metrics
	Logger           *zerolog.Logger
}

// NewSession creates a Session in the Connecting state.
func NewSession(opts SessionOpts) (*Session, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("call: backend is required")
	}
	if opts.Media == nil {
		return nil, fmt.Errorf("call: media source is required")
	}
	if opts.Speaker == nil {
		return nil, fmt.Errorf("call: speaker is required")
	}
	s := &Session{
		id:       uuid.NewString(),
		agent:    opts.Agent.Clone(),
		backend:  opts.Backend,
		media:    opts.Media,
		speaker:  opts.Speaker,
		inRate:   opts.InputSampleRate,
		outRate:  opts.OutputSampleRate,
		observer: opts.Observer,
		metrics:  opts.Metrics,
		log:      zerolog.Nop(),
		state:    StateConnecting,
		hangup:   make(chan struct{}),
	}
	if s.inRate <= 0 {
		s.inRate = DefaultInputSampleRate
	}
	if s.outRate <= 0 {
		s.outRate = DefaultOutputSampleRate
	}
	rate := opts.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	s.frameGap = time.Second / time.Duration(rate)
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	s.log = s.log.With().Str("call", s.id).Str("agent", s.agent.ID).Logger()
	s.playback = NewPlayback(opts.Speaker, s.outRate)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current state and, in StateError, the cause.
func (s *Session) State() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.err
}

// Transcripts returns the finished transcript lines so far.
func (s *Session) Transcripts() []models.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcripts.Lines()
}

// HangUp ends the call. It is safe to call from any goroutine, more than
// once, and before Run.
func (s *Session) HangUp() {
	s.hangupOnce.Do(func() { close(s.hangup) })
}

// Config returns the live session parameters for the agent.
func (s *Session) Config() LiveConfig {
	return LiveConfig{
		Voice:             s.agent.Voice(),
		SystemInstruction: persona.BuildSystemPrompt(s.agent, nil),
		InputSampleRate:   s.inRate,
		OutputSampleRate:  s.outRate,
		Transcribe:        true,
	}
}

// Run drives the call until hang-up, remote close, failure, or ctx end.
// Every acquired resource is released exactly once before Run returns. The
// returned error is nil when the call ended normally.
func (s *Session) Run(ctx context.Context) error {
	defer s.release()

	// Opening media and dialing can be slow; a hang-up aborts both.
	openCtx, stopOpen := context.WithCancel(ctx)
	defer stopOpen()
	go func() {
		select {
		case <-s.hangup:
			stopOpen()
		case <-openCtx.Done():
		}
	}()

	media, err := s.media.Open(openCtx)
	if err != nil {
		return s.startFailed(ctx, fmt.Errorf("call: open media: %w", err))
	}
	s.addCloser(media.Close)

	conn, err := s.backend.Dial(openCtx, s.Config())
	if err != nil {
		return s.startFailed(ctx, fmt.Errorf("call: dial backend: %w", err))
	}
	s.addCloser(conn.Close)

	if s.hungUp() {
		s.apply(Event{Kind: EventHangUp})
		return nil
	}

	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()
	s.metrics.CallStarted()
	s.apply(Event{Kind: EventOpened})

	loopCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	errCh := make(chan error, 3)

	wg.Add(3)
	go func() { defer wg.Done(); errCh <- s.uploadAudio(loopCtx, conn, media) }()
	go func() { defer wg.Done(); errCh <- s.uploadFrames(loopCtx, conn, media) }()
	go func() { defer wg.Done(); errCh <- s.receive(loopCtx, conn) }()

	var result error
	select {
	case <-s.hangup:
		s.apply(Event{Kind: EventHangUp})
	case <-ctx.Done():
		s.apply(Event{Kind: EventHangUp})
	case err := <-errCh:
		switch {
		case err == nil, errors.Is(err, ErrRemoteClosed):
			s.apply(Event{Kind: EventRemoteClosed})
		default:
			result = err
			s.apply(Event{Kind: EventFailed, Err: err})
		}
	}

	cancel()
	s.release()
	wg.Wait()

	state, _ := s.State()
	s.mu.Lock()
	d := time.Since(s.started)
	s.mu.Unlock()
	s.metrics.CallFinished(state.String(), d)
	s.log.Info().Str("state", state.String()).Dur("duration", d).Msg("call finished")
	return result
}

// startFailed settles a call whose setup did not complete. Setup cut short
// by a hang-up or the caller's context ends the call instead of failing it.
func (s *Session) startFailed(ctx context.Context, err error) error {
	if s.hungUp() || ctx.Err() != nil {
		s.apply(Event{Kind: EventHangUp})
		return nil
	}
	s.apply(Event{Kind: EventFailed, Err: err})
	return err
}

func (s *Session) hungUp() bool {
	select {
	case <-s.hangup:
		return true
	default:
		return false
	}
}

func (s *Session) uploadAudio(ctx context.Context, conn LiveConn, media Media) error {
	audio := media.Audio()
	for {
		select {
		case <-ctx.Done():
			return nil
		case chunk, ok := <-audio:
			if !ok {
				<-ctx.Done()
				return nil
			}
			if err := conn.SendAudio(chunk); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("call: send audio: %w", err)
			}
			s.metrics.AudioBytes("in", len(chunk))
		}
	}
}

func (s *Session) uploadFrames(ctx context.Context, conn LiveConn, media Media) error {
	ticker := time.NewTicker(s.frameGap)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			frame, ok := media.Frame()
			if !ok {
				continue
			}
			if err := conn.SendFrame(frame); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("call: send frame: %w", err)
			}
		}
	}
}

func (s *Session) receive(ctx context.Context, conn LiveConn) error {
	for {
		ev, err := conn.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrRemoteClosed) {
				return err
			}
			return fmt.Errorf("call: receive: %w", err)
		}
		if err := s.Handle(ev); err != nil {
			return err
		}
	}
}

// Handle applies one server message: transcripts, then turn completion,
// then audio, then interruption.
func (s *Session) Handle(ev ServerEvent) error {
	var finished []models.Transcript
	s.mu.Lock()
	if ev.OutputText != "" {
		s.transcripts.AddOutput(ev.OutputText)
	}
	if ev.InputText != "" {
		s.transcripts.AddInput(ev.InputText)
	}
	if ev.TurnComplete {
		finished = s.transcripts.Complete()
	}
	s.mu.Unlock()

	if s.observer.OnTranscript != nil {
		for _, t := range finished {
			s.observer.OnTranscript(t)
		}
	}

	for _, pcm := range ev.Audio {
		start, err := s.playback.Enqueue(pcm)
		if err != nil {
			return err
		}
		s.metrics.AudioBytes("out", len(pcm))
		if s.observer.OnAudio != nil {
			s.observer.OnAudio(start, pcm)
		}
	}

	if ev.Interrupted {
		s.playback.Interrupt()
		s.metrics.Interrupted()
		if s.observer.OnInterrupt != nil {
			s.observer.OnInterrupt()
		}
	}
	return nil
}

// Playback exposes the output scheduler.
func (s *Session) Playback() *Playback { return s.playback }

func (s *Session) apply(ev Event) {
	s.mu.Lock()
	prev := s.state
	next := Transition(prev, ev)
	if next == prev {
		s.mu.Unlock()
		return
	}
	s.state = next
	if next == StateError {
		s.err = ev.Err
	}
	err := s.err
	s.mu.Unlock()

	if next == StateError {
		s.log.Error().Err(err).Str("from", prev.String()).Msg("call failed")
	} else {
		s.log.Info().Str("from", prev.String()).Str("to", next.String()).Msg("call state changed")
	}
	if s.observer.OnState != nil {
		s.observer.OnState(next, err)
	}
}

func (s *Session) addCloser(fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, fn)
}

// release stops playback and closes the backend, media and speaker in
// reverse acquisition order. It runs once no matter how the call ends.
func (s *Session) release() {
	s.releaseOnce.Do(func() {
		s.playback.Interrupt()
		s.mu.Lock()
		closers := s.closers
		s.closers = nil
		s.mu.Unlock()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				s.log.Warn().Err(err).Msg("release call resource")
			}
		}
		if err := s.speaker.Close(); err != nil {
			s.log.Warn().Err(err).Msg("close speaker")
		}
	})
}
