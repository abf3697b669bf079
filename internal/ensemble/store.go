package ensemble

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/zulandar/ensemble/internal/models"
	"github.com/zulandar/ensemble/internal/settings"
)

// WelcomeText is the first message of a fresh history.
const WelcomeText = "Welcome to the AI Agent Ensemble! Please add your Gemini API key in the settings to begin."

// ThinkingText is shown while replies are being generated.
const ThinkingText = "AI friends are thinking..."

// Store owns the roster, history, user profile and API key. Every mutation
// goes through its methods and rewrites the persisted key it touched.
type Store struct {
	settings *settings.Store
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	agents   []models.Agent
	messages []models.ChatMessage
	profile  models.UserProfile
	apiKey   string
	thinking bool
	typing   string

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// StoreOpts holds parameters for opening a Store.
type StoreOpts struct {
	Settings *settings.Store
	Logger   *zerolog.Logger
	Now      func() time.Time // optional; defaults to time.Now
}

// Open loads every persisted key, initialising absent or unparsable ones to
// their defaults. A fresh history starts with a System welcome message.
func Open(ctx context.Context, opts StoreOpts) (*Store, error) {
	if opts.Settings == nil {
		return nil, fmt.Errorf("ensemble: settings store is required")
	}
	s := &Store{
		settings: opts.Settings,
		log:      zerolog.Nop(),
		now:      opts.Now,
		subs:     make(map[int]chan Event),
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	if s.now == nil {
		s.now = time.Now
	}

	var err error
	if s.agents, err = settings.LoadOrInit(ctx, opts.Settings, settings.KeyAgents, models.DefaultAgents()); err != nil {
		return nil, fmt.Errorf("ensemble: load agents: %w", err)
	}
	if s.messages, err = settings.LoadOrInit(ctx, opts.Settings, settings.KeyMessages, []models.ChatMessage{}); err != nil {
		return nil, fmt.Errorf("ensemble: load messages: %w", err)
	}
	if s.profile, err = settings.LoadOrInit(ctx, opts.Settings, settings.KeyUserProfile, models.DefaultUserProfile()); err != nil {
		return nil, fmt.Errorf("ensemble: load user profile: %w", err)
	}
	if s.apiKey, err = settings.LoadOrInit(ctx, opts.Settings, settings.KeyAPIKey, ""); err != nil {
		return nil, fmt.Errorf("ensemble: load api key: %w", err)
	}

	if len(s.agents) == 0 {
		s.log.Warn().Msg("stored roster is empty, restoring defaults")
		s.agents = models.DefaultAgents()
		if err := s.settings.Put(ctx, settings.KeyAgents, s.agents); err != nil {
			return nil, fmt.Errorf("ensemble: reset agents: %w", err)
		}
	}
	if len(s.messages) == 0 {
		if _, err := s.AppendMessage(ctx, models.ChatMessage{Author: models.SystemAuthor(), Text: WelcomeText}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Agents returns a copy of the roster.
func (s *Store) Agents() []models.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Agent, len(s.agents))
	for i, a := range s.agents {
		out[i] = a.Clone()
	}
	return out
}

// Agent looks up an agent by id.
func (s *Store) Agent(id string) (models.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.agents, id); i >= 0 {
		return s.agents[i].Clone(), true
	}
	return models.Agent{}, false
}

// Messages returns a copy of the history in insertion order.
func (s *Store) Messages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatMessage(nil), s.messages...)
}

// Profile returns the user profile.
func (s *Store) Profile() models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// APIKey returns the stored backend key, or "" if none is set.
func (s *Store) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.apiKey
}

// AppendMessage adds msg to the end of the history. A missing id or
// timestamp is filled in. The stored message is returned.
func (s *Store) AppendMessage(ctx context.Context, msg models.ChatMessage) (models.ChatMessage, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now().UTC()
	}

	s.mu.Lock()
	next := append(append(make([]models.ChatMessage, 0, len(s.messages)+1), s.messages...), msg)
	if err := s.settings.Put(ctx, settings.KeyMessages, next); err != nil {
		s.mu.Unlock()
		return msg, fmt.Errorf("ensemble: append message: %w", err)
	}
	s.messages = next
	s.mu.Unlock()

	s.publish(Event{Kind: EventMessage, Message: &msg})
	return msg, nil
}

// ClearHistory drops every message.
func (s *Store) ClearHistory(ctx context.Context) error {
	s.mu.Lock()
	if err := s.settings.Put(ctx, settings.KeyMessages, []models.ChatMessage{}); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("ensemble: clear history: %w", err)
	}
	s.messages = nil
	s.mu.Unlock()

	s.publish(Event{Kind: EventHistory})
	return nil
}

// AddAgent appends a to the roster. The id must be non-empty and unique.
func (s *Store) AddAgent(ctx context.Context, a *models.Agent) error {
	if a == nil {
		return fmt.Errorf("ensemble: add agent: agent is nil")
	}
	if a.ID == "" {
		return fmt.Errorf("ensemble: add agent: id is required")
	}

	s.mu.Lock()
	if indexOf(s.agents, a.ID) >= 0 {
		s.mu.Unlock()
		return fmt.Errorf("ensemble: add agent %s: %w", a.ID, ErrDuplicateAgent)
	}
	next := append(cloneAgents(s.agents), a.Clone())
	if err := s.commitAgents(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publish(Event{Kind: EventRoster})
	return nil
}

// NewAgent creates an agent with starter attributes, adds it, and returns it.
func (s *Store) NewAgent(ctx context.Context) (models.Agent, error) {
	s.mu.RLock()
	n := len(s.agents) + 1
	s.mu.RUnlock()

	a := models.Agent{
		ID:                "agent-" + uuid.NewString(),
		Name:              fmt.Sprintf("Agent %d", n),
		Profession:        models.ProfessionFriend,
		Emotion:           models.EmotionNeutral,
		Gender:            models.GenderFemale,
		Age:               25,
		PersonalityTraits: []models.PersonalityTrait{},
		VoiceType:         models.VoicePrebuilt,
		VoiceName:         models.DefaultVoice,
		SpeakingStyle:     models.StyleExpressive,
	}
	if err := s.AddAgent(ctx, &a); err != nil {
		return models.Agent{}, err
	}
	return a, nil
}

// UpdateAgent replaces the agent with the given id. The replacement may carry
// a new id as long as it does not collide with another agent.
func (s *Store) UpdateAgent(ctx context.Context, id string, a models.Agent) error {
	if a.ID == "" {
		a.ID = id
	}

	s.mu.Lock()
	i := indexOf(s.agents, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("ensemble: update agent %s: %w", id, ErrAgentNotFound)
	}
	if a.ID != id && indexOf(s.agents, a.ID) >= 0 {
		s.mu.Unlock()
		return fmt.Errorf("ensemble: update agent %s: %w", a.ID, ErrDuplicateAgent)
	}
	next := cloneAgents(s.agents)
	next[i] = a.Clone()
	if err := s.commitAgents(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.publish(Event{Kind: EventRoster})
	return nil
}

// RemoveAgent deletes an agent. The roster can never become empty.
func (s *Store) RemoveAgent(ctx context.Context, id string) error {
	s.mu.Lock()
	i := indexOf(s.agents, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("ensemble: remove agent %s: %w", id, ErrAgentNotFound)
	}
	if len(s.agents) == 1 {
		s.mu.Unlock()
		return fmt.Errorf("ensemble: remove agent %s: %w", id, ErrLastAgent)
	}
	next := append(cloneAgents(s.agents[:i]), cloneAgents(s.agents[i+1:])...)
	if err := s.commitAgents(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.typing == id {
		s.typing = ""
	}
	s.mu.Unlock()

	s.publish(Event{Kind: EventRoster})
	return nil
}

// SetProfile replaces the user profile.
func (s *Store) SetProfile(ctx context.Context, p models.UserProfile) error {
	s.mu.Lock()
	if err := s.settings.Put(ctx, settings.KeyUserProfile, p); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("ensemble: set profile: %w", err)
	}
	s.profile = p
	s.mu.Unlock()

	s.publish(Event{Kind: EventProfile})
	return nil
}

// SetAPIKey stores the backend key. An empty key clears it.
func (s *Store) SetAPIKey(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.settings.Put(ctx, settings.KeyAPIKey, key); err != nil {
		return fmt.Errorf("ensemble: set api key: %w", err)
	}
	s.apiKey = key
	return nil
}

// SetThinking toggles the "thinking" indicator. Clearing it also clears typing.
func (s *Store) SetThinking(on bool) {
	s.mu.Lock()
	if s.thinking == on && (on || s.typing == "") {
		s.mu.Unlock()
		return
	}
	s.thinking = on
	if !on {
		s.typing = ""
	}
	ev := s.indicatorEventLocked()
	s.mu.Unlock()
	s.publish(ev)
}

// SetTyping marks agentID as typing. An empty id clears the typing indicator.
func (s *Store) SetTyping(agentID string) {
	s.mu.Lock()
	if s.typing == agentID {
		s.mu.Unlock()
		return
	}
	s.typing = agentID
	ev := s.indicatorEventLocked()
	s.mu.Unlock()
	s.publish(ev)
}

// Indicator reports whether a turn is thinking and the text to show for it.
func (s *Store) Indicator() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.thinking, s.indicatorTextLocked()
}

func (s *Store) indicatorTextLocked() string {
	if s.typing != "" {
		if i := indexOf(s.agents, s.typing); i >= 0 {
			return s.agents[i].Name + " is typing..."
		}
	}
	if s.thinking {
		return ThinkingText
	}
	return ""
}

func (s *Store) indicatorEventLocked() Event {
	return Event{Kind: EventIndicator, Thinking: s.thinking, Indicator: s.indicatorTextLocked()}
}

// Subscribe returns a channel of store events and a func that unsubscribes
// and closes it. Slow subscribers miss events rather than block mutations.
func (s *Store) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Debug().Int("subscriber", id).Str("kind", string(ev.Kind)).Msg("subscriber full, event dropped")
		}
	}
}

// commitAgents persists next and swaps it in. Caller holds s.mu.
func (s *Store) commitAgents(ctx context.Context, next []models.Agent) error {
	if err := s.settings.Put(ctx, settings.KeyAgents, next); err != nil {
		return fmt.Errorf("ensemble: save agents: %w", err)
	}
	s.agents = next
	return nil
}

func indexOf(agents []models.Agent, id string) int {
	for i, a := range agents {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func cloneAgents(agents []models.Agent) []models.Agent {
	out := make([]models.Agent, len(agents))
	for i, a := range agents {
		out[i] = a.Clone()
	}
	return out
}
