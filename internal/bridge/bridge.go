package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/zulandar/ensemble/internal/ensemble"
	"github.com/zulandar/ensemble/internal/metrics"
	"github.com/zulandar/ensemble/internal/models"
)

// Replies the bridge posts on its own behalf.
const (
	BusyReply  = "Still waiting on the last round, one message at a time."
	NoKeyReply = "No API key is configured yet. Add one with `ens key set`."
	OnlineText = "Ensemble bridge online"
)

// Daemon connects the ensemble to a chat platform. Inbound platform messages
// start user turns; agent and System messages are posted back.
type Daemon struct {
	svc       *ensemble.Service
	adapter   Adapter
	channelID string
	digest    cron.Schedule
	metrics   *metrics.Metrics
	log       zerolog.Logger
	now       func() time.Time
}

// DaemonOpts holds parameters for creating a Daemon.
type DaemonOpts struct {
	Service   *ensemble.Service
	Adapter   Adapter
	ChannelID string // if set, inbound messages from other channels are ignored
	// DigestCron is a 5-field cron expression; empty disables the digest.
	DigestCron string
	Metrics    *metrics.Metrics
	Logger     *zerolog.Logger
	Now        func() time.Time // defaults to time.Now
}

// NewDaemon creates a Daemon with the given options.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.Service == nil {
		return nil, fmt.Errorf("bridge: service is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bridge: adapter is required")
	}
	d := &Daemon{
		svc:       opts.Service,
		adapter:   opts.Adapter,
		channelID: opts.ChannelID,
		metrics:   opts.Metrics,
		log:       zerolog.Nop(),
		now:       opts.Now,
	}
	if opts.DigestCron != "" {
		sched, err := ParseSchedule(opts.DigestCron)
		if err != nil {
			return nil, err
		}
		d.digest = sched
	}
	if opts.Logger != nil {
		d.log = *opts.Logger
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d, nil
}

// Run connects the adapter and pumps messages both ways until ctx is
// cancelled or the adapter closes its inbound channel. In-flight turns are
// waited for before Run returns.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("bridge: connect: %w", err)
	}

	var botUserID string
	if bui, ok := d.adapter.(BotUserIDer); ok {
		botUserID = bui.BotUserID()
	}

	inbound, err := d.adapter.Listen(ctx)
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("bridge: listen: %w", err)
	}

	events, unsubscribe := d.svc.Store().Subscribe()
	defer unsubscribe()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go d.forward(runCtx, events)
	if d.digest != nil {
		go d.runDigest(runCtx)
	}

	d.send(ctx, OutboundMessage{Text: OnlineText})
	d.log.Info().Msg("bridge online")

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("bridge shutting down")
			cancel()
			d.svc.Wait()
			if err := d.adapter.Close(); err != nil {
				d.log.Warn().Err(err).Msg("close adapter")
			}
			return nil

		case msg, ok := <-inbound:
			if !ok {
				d.log.Info().Msg("bridge inbound channel closed")
				cancel()
				d.svc.Wait()
				return nil
			}
			if botUserID != "" && msg.UserID == botUserID {
				continue
			}
			d.Handle(runCtx, msg)
		}
	}
}

// Handle turns one inbound platform message into a user turn.
func (d *Daemon) Handle(ctx context.Context, msg InboundMessage) {
	if d.channelID != "" && msg.ChannelID != d.channelID {
		return
	}
	d.metrics.Bridged("in")
	_, err := d.svc.Start(ctx, msg.Text)
	reply := ""
	switch {
	case err == nil:
		d.log.Debug().Str("user", msg.UserName).Msg("turn started from bridge")
		return
	case errors.Is(err, ensemble.ErrEmptyMessage):
		return
	case errors.Is(err, ensemble.ErrTurnInFlight):
		reply = BusyReply
	case errors.Is(err, ensemble.ErrNoAPIKey):
		reply = NoKeyReply
	default:
		d.log.Error().Err(err).Msg("start turn from bridge")
		return
	}
	d.send(ctx, OutboundMessage{ChannelID: msg.ChannelID, ThreadID: msg.ThreadID, Text: reply})
}

// forward posts agent and System messages as they are appended.
func (d *Daemon) forward(ctx context.Context, events <-chan ensemble.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if out, ok := Mirror(ev); ok {
				d.send(ctx, out)
			}
		}
	}
}

// Mirror converts a store event to the platform message to post, if any.
// Only new agent and System messages are mirrored.
func Mirror(ev ensemble.Event) (OutboundMessage, bool) {
	if ev.Kind != ensemble.EventMessage || ev.Message == nil {
		return OutboundMessage{}, false
	}
	m := ev.Message
	if m.Author.ID == models.UserAuthorID {
		return OutboundMessage{}, false
	}
	return OutboundMessage{Author: m.Author.Name, Text: m.Text}, true
}

func (d *Daemon) runDigest(ctx context.Context) {
	for {
		wait := nextDelay(d.digest, d.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		d.PostDigest(ctx)
	}
}

// PostDigest posts the activity summary for the last DigestWindow, unless
// there was no activity.
func (d *Daemon) PostDigest(ctx context.Context) bool {
	until := d.now()
	dg, ok := BuildDigest(d.svc.Store().Messages(), until.Add(-DigestWindow), until)
	if !ok {
		d.log.Debug().Msg("digest suppressed, no activity")
		return false
	}
	d.send(ctx, OutboundMessage{Text: dg.Format()})
	return true
}

func (d *Daemon) send(ctx context.Context, msg OutboundMessage) {
	if err := d.adapter.Send(ctx, msg); err != nil {
		d.log.Warn().Err(err).Msg("bridge send failed")
		return
	}
	d.metrics.Bridged("out")
}
