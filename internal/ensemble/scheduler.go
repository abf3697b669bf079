package ensemble

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/zulandar/ensemble/internal/config"
	"github.com/zulandar/ensemble/internal/metrics"
	"github.com/zulandar/ensemble/internal/models"
)

// Sleeper waits for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper sleeps on the wall clock.
type RealSleeper struct{}

// Sleep blocks for d, returning ctx.Err() if ctx ends first.
func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Range is a half-open duration interval [Min, Max).
type Range struct {
	Min, Max time.Duration
}

// Delays are the pacing intervals for revealing replies.
type Delays struct {
	Initial Range // before the first reply
	Typing  Range // typing indicator shown before each reply
	Gap     Range // between consecutive replies
}

// DefaultDelays returns the standard reveal pacing.
func DefaultDelays() Delays {
	return Delays{
		Initial: Range{2000 * time.Millisecond, 7000 * time.Millisecond},
		Typing:  Range{500 * time.Millisecond, 2000 * time.Millisecond},
		Gap:     Range{2000 * time.Millisecond, 6000 * time.Millisecond},
	}
}

// DelaysFromConfig converts millisecond turn settings to Delays.
func DelaysFromConfig(c config.TurnConfig) Delays {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	return Delays{
		Initial: Range{ms(c.InitialMinMS), ms(c.InitialMaxMS)},
		Typing:  Range{ms(c.TypingMinMS), ms(c.TypingMaxMS)},
		Gap:     Range{ms(c.GapMinMS), ms(c.GapMaxMS)},
	}
}

// Stage is the part of the store the scheduler drives.
type Stage interface {
	Agent(id string) (models.Agent, bool)
	SetThinking(on bool)
	SetTyping(agentID string)
	AppendMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error)
}

// Scheduler reveals fetched replies one at a time with human-like pacing.
type Scheduler struct {
	stage   Stage
	sleeper Sleeper
	delays  Delays
	metrics *metrics.Metrics

	mu  sync.Mutex
	rng *rand.Rand
}

// SchedulerOpts holds parameters for creating a Scheduler.
type SchedulerOpts struct {
	Stage   Stage
	Sleeper Sleeper    // defaults to RealSleeper
	Rand    *rand.Rand // defaults to a randomly seeded PCG
	Delays  *Delays    // defaults to DefaultDelays
	Metrics *metrics.Metrics
}

// NewScheduler creates a Scheduler.
func NewScheduler(opts SchedulerOpts) *Scheduler {
	s := &Scheduler{
		stage:   opts.Stage,
		sleeper: opts.Sleeper,
		rng:     opts.Rand,
		delays:  DefaultDelays(),
		metrics: opts.Metrics,
	}
	if s.sleeper == nil {
		s.sleeper = RealSleeper{}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Delays != nil {
		s.delays = *opts.Delays
	}
	return s
}

// Reveal appends each reply to the stage in a random order, pausing between
// them. Replies from agents no longer in the roster are skipped. Indicators
// are cleared on every return path. It returns the number of messages
// appended.
func (s *Scheduler) Reveal(ctx context.Context, replies []Reply) (int, error) {
	defer func() {
		s.stage.SetTyping("")
		s.stage.SetThinking(false)
	}()
	if len(replies) == 0 {
		return 0, nil
	}

	if err := s.sleeper.Sleep(ctx, s.sample(s.delays.Initial)); err != nil {
		return 0, err
	}

	order := append([]Reply(nil), replies...)
	s.mu.Lock()
	s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	s.mu.Unlock()

	type pending struct {
		agent models.Agent
		text  string
	}
	var queue []pending
	for _, r := range order {
		a, ok := s.stage.Agent(r.AgentID)
		if !ok {
			s.metrics.Dropped("unknown_agent", 1)
			continue
		}
		queue = append(queue, pending{agent: a, text: r.Message})
	}

	appended := 0
	for i, p := range queue {
		s.stage.SetTyping(p.agent.ID)
		if err := s.sleeper.Sleep(ctx, s.sample(s.delays.Typing)); err != nil {
			return appended, err
		}
		if _, err := s.stage.AppendMessage(ctx, models.ChatMessage{
			Author: models.AgentAuthor(p.agent),
			Text:   p.text,
		}); err != nil {
			return appended, err
		}
		appended++
		s.metrics.Revealed()

		if i < len(queue)-1 {
			s.stage.SetTyping("")
			if err := s.sleeper.Sleep(ctx, s.sample(s.delays.Gap)); err != nil {
				return appended, err
			}
		}
	}
	return appended, nil
}

func (s *Scheduler) sample(r Range) time.Duration {
	if r.Max <= r.Min {
		return r.Min
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return r.Min + time.Duration(s.rng.Int64N(int64(r.Max-r.Min)))
}
