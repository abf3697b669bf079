package ensemble

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/ensemble/internal/models"
	"github.com/zulandar/ensemble/internal/settings"
)

func TestOpen_RequiresSettings(t *testing.T) {
	if _, err := Open(context.Background(), StoreOpts{}); err == nil {
		t.Fatal("expected error for nil settings")
	}
}

func TestOpen_WritesDefaultsBack(t *testing.T) {
	ctx := context.Background()
	st := testSettings(t)

	keys, err := st.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("fresh store has keys %v", keys)
	}

	s, err := Open(ctx, StoreOpts{Settings: st})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	var agents []models.Agent
	if ok, err := st.Get(ctx, settings.KeyAgents, &agents); err != nil || !ok {
		t.Fatalf("agents not written back: ok=%v err=%v", ok, err)
	}
	if len(agents) != 5 || agents[0].Name != "Priya Sharma" {
		t.Errorf("persisted agents = %d, first %q", len(agents), agents[0].Name)
	}

	var profile models.UserProfile
	if ok, _ := st.Get(ctx, settings.KeyUserProfile, &profile); !ok || profile != models.DefaultUserProfile() {
		t.Errorf("persisted profile = %+v, want default", profile)
	}

	var key string
	if ok, _ := st.Get(ctx, settings.KeyAPIKey, &key); !ok || key != "" {
		t.Errorf("persisted api key = %q (ok=%v), want empty", key, ok)
	}

	var msgs []models.ChatMessage
	if ok, _ := st.Get(ctx, settings.KeyMessages, &msgs); !ok {
		t.Fatal("messages not written back")
	}
	if len(msgs) != 1 || msgs[0].Author.ID != models.SystemAuthorID || msgs[0].Text != WelcomeText {
		t.Errorf("persisted messages = %+v, want welcome only", msgs)
	}
	if got := s.Messages(); len(got) != 1 || got[0].ID == "" {
		t.Errorf("in-memory messages = %+v", got)
	}
}

func TestOpen_UnparsableKeyResetToDefault(t *testing.T) {
	ctx := context.Background()
	st := testSettings(t)
	if err := st.PutRaw(ctx, settings.KeyAgents, []byte(`{"not":"a list"}`)); err != nil {
		t.Fatalf("PutRaw: %v", err)
	}

	s, err := Open(ctx, StoreOpts{Settings: st})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(s.Agents()) != 5 {
		t.Errorf("len(Agents) = %d, want 5 defaults", len(s.Agents()))
	}
	raw, _, _ := st.Raw(ctx, settings.KeyAgents)
	if !strings.HasPrefix(string(raw), "[") {
		t.Errorf("stored agents = %s, want default list written back", raw)
	}
}

func TestOpen_KeepsExistingHistory(t *testing.T) {
	ctx := context.Background()
	st := testSettings(t)
	prior := []models.ChatMessage{{ID: "m1", Author: models.UserAuthor(models.UserProfile{}), Text: "hello", Timestamp: time.Unix(100, 0).UTC()}}
	if err := st.Put(ctx, settings.KeyMessages, prior); err != nil {
		t.Fatal(err)
	}
	s, err := Open(ctx, StoreOpts{Settings: st})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	msgs := s.Messages()
	if len(msgs) != 1 || msgs[0].ID != "m1" {
		t.Errorf("Messages = %+v, want the stored history without a welcome", msgs)
	}
}

func TestOpen_EmptyRosterRestored(t *testing.T) {
	ctx := context.Background()
	st := testSettings(t)
	if err := st.Put(ctx, settings.KeyAgents, []models.Agent{}); err != nil {
		t.Fatal(err)
	}
	s, err := Open(ctx, StoreOpts{Settings: st})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(s.Agents()) != 5 {
		t.Errorf("len(Agents) = %d, want defaults restored", len(s.Agents()))
	}
}

func TestAppendMessage_PersistsAndFillsFields(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	st := testSettings(t)
	s, err := Open(ctx, StoreOpts{Settings: st, Now: func() time.Time { return fixed }})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.AppendMessage(ctx, models.ChatMessage{Author: models.UserAuthor(s.Profile()), Text: "hi"})
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if got.ID == "" {
		t.Error("ID should be filled in")
	}
	if !got.Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, fixed)
	}

	var stored []models.ChatMessage
	if _, err := st.Get(ctx, settings.KeyMessages, &stored); err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 || stored[1].Text != "hi" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestMessages_ReturnsCopy(t *testing.T) {
	s, _ := testStore(t)
	msgs := s.Messages()
	msgs[0].Text = "mutated"
	if s.Messages()[0].Text == "mutated" {
		t.Error("Messages should return a copy")
	}
}

func TestAgentSnapshot_SurvivesUpdate(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)
	priya, _ := s.Agent("agent-1")
	if _, err := s.AppendMessage(ctx, models.ChatMessage{Author: models.AgentAuthor(priya), Text: "hello"}); err != nil {
		t.Fatal(err)
	}

	priya.Name = "Dr. Priya"
	priya.Emotion = models.EmotionExcited
	if err := s.UpdateAgent(ctx, "agent-1", priya); err != nil {
		t.Fatalf("UpdateAgent: %v", err)
	}

	msgs := s.Messages()
	last := msgs[len(msgs)-1]
	if last.Author.Profile.Name != "Priya Sharma" || last.Author.Profile.Emotion != models.EmotionEmpathetic {
		t.Errorf("snapshot changed after update: %+v", last.Author.Profile)
	}
	if a, _ := s.Agent("agent-1"); a.Name != "Dr. Priya" {
		t.Errorf("roster name = %q, want Dr. Priya", a.Name)
	}
}

func TestAddAgent(t *testing.T) {
	ctx := context.Background()
	s, st := testStore(t)

	if err := s.AddAgent(ctx, nil); err == nil {
		t.Error("expected error for nil agent")
	}
	if err := s.AddAgent(ctx, &models.Agent{Name: "No ID"}); err == nil {
		t.Error("expected error for empty id")
	}
	dup := models.DefaultAgents()[0]
	if err := s.AddAgent(ctx, &dup); !errors.Is(err, ErrDuplicateAgent) {
		t.Errorf("err = %v, want ErrDuplicateAgent", err)
	}

	a := models.Agent{ID: "agent-x", Name: "Xavier", Profession: models.ProfessionPilot}
	if err := s.AddAgent(ctx, &a); err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	if len(s.Agents()) != 6 {
		t.Errorf("len(Agents) = %d, want 6", len(s.Agents()))
	}
	var stored []models.Agent
	if _, err := st.Get(ctx, settings.KeyAgents, &stored); err != nil {
		t.Fatal(err)
	}
	if len(stored) != 6 || stored[5].ID != "agent-x" {
		t.Errorf("stored roster = %d agents", len(stored))
	}
}

func TestNewAgent_Defaults(t *testing.T) {
	s, _ := testStore(t)
	a, err := s.NewAgent(context.Background())
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	if !strings.HasPrefix(a.ID, "agent-") || len(a.ID) <= len("agent-") {
		t.Errorf("ID = %q", a.ID)
	}
	if a.Name != "Agent 6" {
		t.Errorf("Name = %q, want Agent 6", a.Name)
	}
	if a.Profession != models.ProfessionFriend || a.Emotion != models.EmotionNeutral || a.Gender != models.GenderFemale || a.Age != 25 {
		t.Errorf("NewAgent = %+v", a)
	}
	if a.Voice() != "Zephyr" || a.Style() != models.StyleExpressive || a.VoiceType != models.VoicePrebuilt {
		t.Errorf("voice = %q/%q/%q", a.Voice(), a.Style(), a.VoiceType)
	}
	if _, ok := s.Agent(a.ID); !ok {
		t.Error("new agent not in roster")
	}
}

func TestUpdateAgent_Errors(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)

	if err := s.UpdateAgent(ctx, "ghost", models.Agent{Name: "x"}); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("err = %v, want ErrAgentNotFound", err)
	}
	a, _ := s.Agent("agent-1")
	a.ID = "agent-2"
	if err := s.UpdateAgent(ctx, "agent-1", a); !errors.Is(err, ErrDuplicateAgent) {
		t.Errorf("err = %v, want ErrDuplicateAgent", err)
	}
	a.ID = "agent-1b"
	if err := s.UpdateAgent(ctx, "agent-1", a); err != nil {
		t.Fatalf("rename id: %v", err)
	}
	if _, ok := s.Agent("agent-1"); ok {
		t.Error("old id should be gone")
	}
	if _, ok := s.Agent("agent-1b"); !ok {
		t.Error("new id missing")
	}
}

func TestRemoveAgent(t *testing.T) {
	ctx := context.Background()
	s, st := testStore(t)

	if err := s.RemoveAgent(ctx, "ghost"); !errors.Is(err, ErrAgentNotFound) {
		t.Errorf("err = %v, want ErrAgentNotFound", err)
	}
	for _, id := range []string{"agent-2", "agent-3", "agent-4", "agent-5"} {
		if err := s.RemoveAgent(ctx, id); err != nil {
			t.Fatalf("RemoveAgent(%s): %v", id, err)
		}
	}
	if err := s.RemoveAgent(ctx, "agent-1"); !errors.Is(err, ErrLastAgent) {
		t.Errorf("err = %v, want ErrLastAgent", err)
	}
	if got := s.Agents(); len(got) != 1 || got[0].ID != "agent-1" {
		t.Errorf("Agents = %+v, want only agent-1", got)
	}
	var stored []models.Agent
	if _, err := st.Get(ctx, settings.KeyAgents, &stored); err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Errorf("stored roster = %d agents, want 1", len(stored))
	}
}

func TestSetProfileAndAPIKey(t *testing.T) {
	ctx := context.Background()
	s, st := testStore(t)

	p := models.UserProfile{Name: "Asha", Bio: "tester"}
	if err := s.SetProfile(ctx, p); err != nil {
		t.Fatalf("SetProfile: %v", err)
	}
	if s.Profile() != p {
		t.Errorf("Profile = %+v", s.Profile())
	}
	if err := s.SetAPIKey(ctx, "k-123"); err != nil {
		t.Fatalf("SetAPIKey: %v", err)
	}
	if s.APIKey() != "k-123" {
		t.Errorf("APIKey = %q", s.APIKey())
	}

	reopened, err := Open(ctx, StoreOpts{Settings: st})
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Profile() != p || reopened.APIKey() != "k-123" {
		t.Errorf("reopened profile/key = %+v / %q", reopened.Profile(), reopened.APIKey())
	}
}

func TestClearHistory(t *testing.T) {
	ctx := context.Background()
	s, st := testStore(t)
	if err := s.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if len(s.Messages()) != 0 {
		t.Errorf("len(Messages) = %d, want 0", len(s.Messages()))
	}
	raw, _, _ := st.Raw(ctx, settings.KeyMessages)
	var stored []json.RawMessage
	if err := json.Unmarshal(raw, &stored); err != nil || len(stored) != 0 {
		t.Errorf("stored messages = %s", raw)
	}
}

func TestIndicator(t *testing.T) {
	s, _ := testStore(t)

	if on, text := s.Indicator(); on || text != "" {
		t.Errorf("initial indicator = %v %q", on, text)
	}
	s.SetThinking(true)
	if _, text := s.Indicator(); text != ThinkingText {
		t.Errorf("text = %q, want %q", text, ThinkingText)
	}
	s.SetTyping("agent-2")
	if _, text := s.Indicator(); text != "Rohan Verma is typing..." {
		t.Errorf("text = %q", text)
	}
	s.SetTyping("")
	if _, text := s.Indicator(); text != ThinkingText {
		t.Errorf("text after clearing typing = %q", text)
	}
	s.SetTyping("agent-2")
	s.SetThinking(false)
	if on, text := s.Indicator(); on || text != "" {
		t.Errorf("cleared indicator = %v %q", on, text)
	}
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)
	events, cancel := s.Subscribe()

	if _, err := s.AppendMessage(ctx, models.ChatMessage{Author: models.SystemAuthor(), Text: "ping"}); err != nil {
		t.Fatal(err)
	}
	s.SetThinking(true)
	if _, err := s.NewAgent(ctx); err != nil {
		t.Fatal(err)
	}

	want := []EventKind{EventMessage, EventIndicator, EventRoster}
	for i, kind := range want {
		select {
		case ev := <-events:
			if ev.Kind != kind {
				t.Errorf("event %d kind = %q, want %q", i, ev.Kind, kind)
			}
			if kind == EventMessage && (ev.Message == nil || ev.Message.Text != "ping") {
				t.Errorf("message event = %+v", ev)
			}
			if kind == EventIndicator && ev.Indicator != ThinkingText {
				t.Errorf("indicator event = %+v", ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	cancel()
	cancel()
	if _, ok := <-events; ok {
		t.Error("channel should be closed after cancel")
	}
}

func TestSubscribe_SlowSubscriberDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	s, _ := testStore(t)
	_, cancel := s.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+10; i++ {
			s.SetTyping("")
			s.SetThinking(i%2 == 0)
		}
		_, _ = s.AppendMessage(ctx, models.ChatMessage{Author: models.SystemAuthor(), Text: "after"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("publishing blocked on a full subscriber")
	}
}
