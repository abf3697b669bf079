// Package gemini implements the reply, speech and live call backends on the
// Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Default model names.
const (
	DefaultReplyModel  = "gemini-2.5-flash"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultLiveModel   = "gemini-2.5-flash-native-audio-preview-09-2025"
)

// ErrNoAPIKey is returned when no key is available at request time.
var ErrNoAPIKey = errors.New("gemini: no API key configured")

// Client resolves the API key on every request and caches one genai client
// per key.
type Client struct {
	apiKey      func() string
	baseURL     string
	replyModel  string
	speechModel string
	liveModel   string
	log         zerolog.Logger

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// Opts holds parameters for creating a Client.
type Opts struct {
	APIKey      func() string // required; called on every request
	BaseURL     string        // optional API endpoint override
	ReplyModel  string
	SpeechModel string
	LiveModel   string
	Logger      *zerolog.Logger
}

// New creates a Client.
func New(opts Opts) (*Client, error) {
	if opts.APIKey == nil {
		return nil, fmt.Errorf("gemini: api key func is required")
	}
	c := &Client{
		apiKey:      opts.APIKey,
		baseURL:     opts.BaseURL,
		replyModel:  opts.ReplyModel,
		speechModel: opts.SpeechModel,
		liveModel:   opts.LiveModel,
		log:         zerolog.Nop(),
		clients:     make(map[string]*genai.Client),
	}
	if c.replyModel == "" {
		c.replyModel = DefaultReplyModel
	}
	if c.speechModel == "" {
		c.speechModel = DefaultSpeechModel
	}
	if c.liveModel == "" {
		c.liveModel = DefaultLiveModel
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	return c, nil
}

func (c *Client) client(ctx context.Context) (*genai.Client, error) {
	key := c.apiKey()
	if key == "" {
		return nil, ErrNoAPIKey
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gc, ok := c.clients[key]; ok {
		return gc, nil
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	c.clients[key] = gc
	c.log.Debug().Int("cached", len(c.clients)).Msg("gemini client created")
	return gc, nil
}
