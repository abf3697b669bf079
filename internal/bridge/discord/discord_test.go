package discord

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/zulandar/ensemble/internal/bridge"
)

// --- Mock Discord session ---

type mockSession struct {
	mu          sync.Mutex
	opened      bool
	closeCalled bool
	openErr     error
	sent        []sentMessage
	sendErrs    []error // consumed one per send
	handlers    []interface{}
	removeCount int
	channels    map[string]*discordgo.Channel
}

type sentMessage struct {
	channelID string
	content   string
}

func newMockSession() *mockSession {
	return &mockSession{channels: make(map[string]*discordgo.Channel)}
}

func (m *mockSession) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return m.openErr
	}
	m.opened = true
	return nil
}

func (m *mockSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalled = true
	return nil
}

func (m *mockSession) Channel(channelID string) (*discordgo.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[channelID]; ok {
		return ch, nil
	}
	return nil, fmt.Errorf("channel not found: %s", channelID)
}

func (m *mockSession) ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sendErrs) > 0 {
		err := m.sendErrs[0]
		m.sendErrs = m.sendErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	m.sent = append(m.sent, sentMessage{channelID: channelID, content: content})
	return &discordgo.Message{ID: "msg-123"}, nil
}

func (m *mockSession) AddHandler(handler interface{}) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.removeCount++
	}
}

// emit dispatches ev to every registered handler of the matching type.
func (m *mockSession) emit(ev interface{}) {
	m.mu.Lock()
	hs := append([]interface{}(nil), m.handlers...)
	m.mu.Unlock()
	for _, h := range hs {
		switch fn := h.(type) {
		case func(*discordgo.Session, *discordgo.Ready):
			if r, ok := ev.(*discordgo.Ready); ok {
				fn(nil, r)
			}
		case func(*discordgo.Session, *discordgo.MessageCreate):
			if mc, ok := ev.(*discordgo.MessageCreate); ok {
				fn(nil, mc)
			}
		}
	}
}

func (m *mockSession) sentMessages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

func newTestAdapter(t *testing.T) (*Adapter, *mockSession) {
	t.Helper()
	sess := newMockSession()
	a, err := New(AdapterOpts{Session: sess, ChannelID: "C_DEFAULT"})
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	a.baseBackoff = time.Millisecond
	if err := a.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	a.SetBotUserID("BOT_USER_ID")
	t.Cleanup(func() { a.Close() })
	return a, sess
}

func userMessage(id, channel, text string, author *discordgo.User) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: id, ChannelID: channel, Content: text, Author: author,
	}}
}

func recv(t *testing.T, ch <-chan bridge.InboundMessage) bridge.InboundMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for inbound message")
	}
	return bridge.InboundMessage{}
}

func TestNew_RequiresBotToken(t *testing.T) {
	_, err := New(AdapterOpts{})
	if err == nil {
		t.Fatal("expected error for missing bot token")
	}
	if !strings.Contains(err.Error(), "bot token") {
		t.Errorf("error = %q, want to mention bot token", err.Error())
	}
}

func TestNew_WithBotToken(t *testing.T) {
	a, err := New(AdapterOpts{BotToken: "test-token"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == nil {
		t.Fatal("expected non-nil adapter")
	}
}

func TestConnect_Success(t *testing.T) {
	_, sess := newTestAdapter(t)
	if !sess.opened {
		t.Error("expected session to be opened")
	}
}

func TestConnect_OpenError(t *testing.T) {
	sess := newMockSession()
	sess.openErr = fmt.Errorf("gateway error")

	a, _ := New(AdapterOpts{Session: sess})
	err := a.Connect(context.Background())
	if err == nil || !strings.Contains(err.Error(), "open gateway") {
		t.Fatalf("err = %v, want open gateway error", err)
	}
}

func TestConnect_AlreadyClosed(t *testing.T) {
	a, _ := newTestAdapter(t)
	a.Close()
	if err := a.Connect(context.Background()); err == nil {
		t.Fatal("expected error for closed adapter")
	}
}

func TestConnect_ReadySetsBotUserID(t *testing.T) {
	a, sess := newTestAdapter(t)
	sess.emit(&discordgo.Ready{User: &discordgo.User{ID: "B42", Username: "ensemble"}})
	if got := a.BotUserID(); got != "B42" {
		t.Errorf("BotUserID = %q, want B42", got)
	}
}

func TestListen_NotConnected(t *testing.T) {
	a, _ := New(AdapterOpts{Session: newMockSession()})
	if _, err := a.Listen(context.Background()); err == nil {
		t.Fatal("expected error for not connected")
	}
}

func TestListen_ReceivesMessages(t *testing.T) {
	a, sess := newTestAdapter(t)
	ch, err := a.Listen(context.Background())
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	sess.emit(userMessage("123456789012345678", "C1", "hello",
		&discordgo.User{ID: "U_ALICE", Username: "alice", GlobalName: "Alice"}))

	msg := recv(t, ch)
	if msg.Platform != "discord" {
		t.Errorf("platform = %q, want discord", msg.Platform)
	}
	if msg.ChannelID != "C1" {
		t.Errorf("channel = %q, want C1", msg.ChannelID)
	}
	if msg.UserID != "U_ALICE" {
		t.Errorf("user id = %q, want U_ALICE", msg.UserID)
	}
	if msg.UserName != "Alice" {
		t.Errorf("username = %q, want Alice", msg.UserName)
	}
	if msg.Text != "hello" {
		t.Errorf("text = %q, want hello", msg.Text)
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected timestamp from snowflake")
	}
}

func TestListen_FiltersSelfAndBotMessages(t *testing.T) {
	a, sess := newTestAdapter(t)
	ch, _ := a.Listen(context.Background())

	sess.emit(userMessage("100", "C1", "self", &discordgo.User{ID: "BOT_USER_ID", Username: "Bot"}))
	sess.emit(userMessage("101", "C1", "other bot", &discordgo.User{ID: "OTHER", Username: "Other", Bot: true}))
	sess.emit(userMessage("102", "C1", "no author", nil))
	sess.emit(userMessage("103", "C1", "from human", &discordgo.User{ID: "U_BOB", Username: "bob"}))

	msg := recv(t, ch)
	if msg.Text != "from human" {
		t.Errorf("expected human message, got %q", msg.Text)
	}
	if msg.UserName != "bob" {
		t.Errorf("username = %q, want username fallback", msg.UserName)
	}
}

func TestHandleMessage_ThreadChannel(t *testing.T) {
	a, sess := newTestAdapter(t)
	sess.channels["thread-999"] = &discordgo.Channel{
		ID:       "thread-999",
		Type:     discordgo.ChannelTypeGuildPublicThread,
		ParentID: "parent-channel",
	}
	ch, _ := a.Listen(context.Background())

	sess.emit(userMessage("400", "thread-999", "hello from thread", &discordgo.User{ID: "U1", Username: "alice"}))

	msg := recv(t, ch)
	if msg.ChannelID != "parent-channel" {
		t.Errorf("ChannelID = %q, want parent-channel", msg.ChannelID)
	}
	if msg.ThreadID != "thread-999" {
		t.Errorf("ThreadID = %q, want thread-999", msg.ThreadID)
	}
}

func TestSend_FormatsAuthor(t *testing.T) {
	a, sess := newTestAdapter(t)

	err := a.Send(context.Background(), bridge.OutboundMessage{Author: "Nova", Text: "hi there"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	sent := sess.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sent))
	}
	if sent[0].channelID != "C_DEFAULT" {
		t.Errorf("channel = %q, want C_DEFAULT", sent[0].channelID)
	}
	if sent[0].content != "**Nova**: hi there" {
		t.Errorf("content = %q", sent[0].content)
	}
}

func TestSend_ThreadTakesPrecedence(t *testing.T) {
	a, sess := newTestAdapter(t)

	err := a.Send(context.Background(), bridge.OutboundMessage{ChannelID: "C1", ThreadID: "T1", Text: "notice"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	sent := sess.sentMessages()
	if sent[0].channelID != "T1" {
		t.Errorf("channel = %q, want T1", sent[0].channelID)
	}
	if sent[0].content != "notice" {
		t.Errorf("content = %q, want bare text", sent[0].content)
	}
}

func TestSend_NoChannel(t *testing.T) {
	sess := newMockSession()
	a, _ := New(AdapterOpts{Session: sess})
	a.Connect(context.Background())
	defer a.Close()

	if err := a.Send(context.Background(), bridge.OutboundMessage{Text: "x"}); err == nil {
		t.Fatal("expected error with no channel")
	}
}

func TestSend_NotConnected(t *testing.T) {
	a, _ := New(AdapterOpts{Session: newMockSession(), ChannelID: "C"})
	if err := a.Send(context.Background(), bridge.OutboundMessage{Text: "x"}); err == nil {
		t.Fatal("expected error when not connected")
	}
}

func TestSend_SplitsLongContent(t *testing.T) {
	a, sess := newTestAdapter(t)

	long := strings.Repeat("a", maxContentLen+10)
	if err := a.Send(context.Background(), bridge.OutboundMessage{Text: long}); err != nil {
		t.Fatalf("send: %v", err)
	}
	sent := sess.sentMessages()
	if len(sent) != 2 {
		t.Fatalf("sent = %d, want 2", len(sent))
	}
	if len(sent[0].content) != maxContentLen || len(sent[1].content) != 10 {
		t.Errorf("chunk sizes = %d, %d", len(sent[0].content), len(sent[1].content))
	}
}

func TestSend_RetriesOnRateLimit(t *testing.T) {
	a, sess := newTestAdapter(t)
	rateLimited := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}
	sess.sendErrs = []error{rateLimited, rateLimited}

	if err := a.Send(context.Background(), bridge.OutboundMessage{Text: "eventually"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got := len(sess.sentMessages()); got != 1 {
		t.Errorf("sent = %d, want 1", got)
	}
}

func TestSend_NonRateLimitErrorNotRetried(t *testing.T) {
	a, sess := newTestAdapter(t)
	sess.sendErrs = []error{fmt.Errorf("boom")}

	err := a.Send(context.Background(), bridge.OutboundMessage{Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v, want boom", err)
	}
	if got := len(sess.sentMessages()); got != 0 {
		t.Errorf("sent = %d, want 0", got)
	}
}

func TestClose_Idempotent(t *testing.T) {
	a, sess := newTestAdapter(t)
	ch, _ := a.Listen(context.Background())

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("expected inbound channel to be closed")
	}
	if !sess.closeCalled {
		t.Error("expected session close")
	}
	if sess.removeCount != 1 {
		t.Errorf("removeCount = %d, want 1", sess.removeCount)
	}
}

func TestSplitContent_Runes(t *testing.T) {
	parts := splitContent("héllo", 2)
	want := []string{"hé", "ll", "o"}
	if len(parts) != len(want) {
		t.Fatalf("parts = %q, want %q", parts, want)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Errorf("parts[%d] = %q, want %q", i, parts[i], want[i])
		}
	}
}
