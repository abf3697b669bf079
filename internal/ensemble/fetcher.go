package ensemble

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/zulandar/ensemble/internal/metrics"
	"github.com/zulandar/ensemble/internal/models"
	"github.com/zulandar/ensemble/internal/persona"
)

// DefaultHistoryLimit is how many trailing messages are sent as context.
const DefaultHistoryLimit = 20

// ReplyGenerator produces the raw JSON reply payload for a prompt.
type ReplyGenerator interface {
	GenerateReplies(ctx context.Context, system, prompt string) (string, error)
}

// Fetcher asks the backend which agents reply to the latest message.
type Fetcher struct {
	gen          ReplyGenerator
	historyLimit int
	timeout      time.Duration
	metrics      *metrics.Metrics
	log          zerolog.Logger
}

// FetcherOpts holds parameters for creating a Fetcher.
type FetcherOpts struct {
	Generator    ReplyGenerator
	HistoryLimit int           // defaults to DefaultHistoryLimit
	Timeout      time.Duration // 0 disables the per-fetch timeout
	Metrics      *metrics.Metrics
	Logger       *zerolog.Logger
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts FetcherOpts) (*Fetcher, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("ensemble: reply generator is required")
	}
	f := &Fetcher{
		gen:          opts.Generator,
		historyLimit: opts.HistoryLimit,
		timeout:      opts.Timeout,
		metrics:      opts.Metrics,
		log:          zerolog.Nop(),
	}
	if f.historyLimit <= 0 {
		f.historyLimit = DefaultHistoryLimit
	}
	if opts.Logger != nil {
		f.log = *opts.Logger
	}
	return f, nil
}

// Fetch returns the replies the backend proposes for the last message in
// history. With an empty history it returns nothing and makes no call.
// Backend errors are returned unchanged apart from wrapping.
func (f *Fetcher) Fetch(ctx context.Context, agents []models.Agent, history []models.ChatMessage) ([]Reply, error) {
	prompt, ok := BuildPrompt(agents, history, f.historyLimit)
	if !ok {
		return nil, nil
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := f.gen.GenerateReplies(ctx, DirectorInstruction, prompt)
	f.metrics.ObserveFetch(start)
	if err != nil {
		return nil, fmt.Errorf("ensemble: fetch replies: %w", err)
	}

	replies, dropped, err := ParseReplies(raw)
	if err != nil {
		return nil, fmt.Errorf("ensemble: fetch replies: %w", err)
	}
	if dropped > 0 {
		f.log.Warn().Int("dropped", dropped).Msg("malformed reply entries dropped")
		f.metrics.Dropped("malformed", dropped)
	}
	f.log.Debug().Int("replies", len(replies)).Dur("elapsed", time.Since(start)).Msg("replies fetched")
	return replies, nil
}

// BuildPrompt renders the reply request for the last message in history.
// It reports false when history is empty.
func BuildPrompt(agents []models.Agent, history []models.ChatMessage, limit int) (string, bool) {
	if len(history) == 0 {
		return "", false
	}
	last := history[len(history)-1]

	var b strings.Builder
	b.WriteString("Your task is to generate responses for any AI agents who would naturally speak next, based on the last message and the ongoing conversation.\n")
	b.WriteString("You must follow all CORE RULES and other instructions precisely.\n")
	b.WriteString("You must generate the responses yourself, perfectly emulating each agent's unique personality, emotion, and behavioral guidelines as detailed in their profiles.\n\n")

	b.WriteString("**AVAILABLE AGENT PROFILES:**\n")
	for i, a := range agents {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "---\nAGENT ID: %s\nAGENT NAME: %s\nAGENT PERSONA:\n%s\n---\n", a.ID, a.Name, persona.BuildSystemPrompt(a, agents))
	}

	b.WriteString("\n**RECENT CONVERSATION HISTORY:**\n")
	for _, m := range Recent(history, limit) {
		fmt.Fprintf(&b, "%s: %s\n", m.Author.Name, m.Text)
	}

	b.WriteString("\n**THE LAST MESSAGE:**\n")
	fmt.Fprintf(&b, "\"%s\" said: \"%s\"\n", last.Author.Name, last.Text)

	b.WriteString("\n**YOUR TASK:**\n")
	b.WriteString("1.  Read the last message and the conversation history.\n")
	b.WriteString("2.  Review all available agent profiles and their detailed personas.\n")
	b.WriteString("3.  Decide which agent(s) should respond, following the \"WHO REPLIES WHEN & HOW\" rules.\n")
	b.WriteString("4.  For each responding agent, write their reply. The reply MUST strictly follow all of their behavioral guidelines and persona.\n")
	b.WriteString("5.  Return a single JSON object containing a list of these responses.\n\n")
	b.WriteString("The JSON output must match the provided schema exactly. Do not add any extra text, explanations, or markdown formatting.\n")
	return b.String(), true
}

// Recent returns the last limit messages of history in order.
func Recent(history []models.ChatMessage, limit int) []models.ChatMessage {
	if limit <= 0 || len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
