package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/zulandar/ensemble/internal/call"
	"github.com/zulandar/ensemble/internal/ensemble"
	"github.com/zulandar/ensemble/internal/models"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsReadLimit    = 4 << 20
	wsAudioBuffer  = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Browser call protocol.
//
// Client to server: binary messages carry 16 kHz mono s16le PCM. Text
// messages are JSON: {"type":"ready"} once the microphone and camera are
// open, {"type":"error","error":<reason>} when they cannot be,
// {"type":"frame","data":<base64 jpeg>} or {"type":"hangup"}. The call
// does not dial the model until the client reports ready or failed.
//
// Server to client, all JSON: state, transcript, audio (with the start
// offset in seconds on the call's playback clock) and interrupt.
type clientMessage struct {
	Type  string `json:"type"`
	Data  []byte `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type serverMessage struct {
	Type   string  `json:"type"`
	State  string  `json:"state,omitempty"`
	Error  string  `json:"error,omitempty"`
	Author string  `json:"author,omitempty"`
	Text   string  `json:"text,omitempty"`
	Start  float64 `json:"start,omitempty"`
	Data   []byte  `json:"data,omitempty"`
}

func (s *Server) handleCall(c *gin.Context) {
	if s.live == nil {
		abort(c, http.StatusServiceUnavailable, errors.New("live calls are not configured"))
		return
	}
	agent, ok := s.store().Agent(c.Param("agentID"))
	if !ok {
		fail(c, ensemble.ErrAgentNotFound)
		return
	}
	if !s.svc.HasAPIKey() {
		fail(c, ensemble.ErrNoAPIKey)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	out := &wsWriter{conn: conn}
	media := newWSMedia()
	sess, err := call.NewSession(call.SessionOpts{
		Agent:            agent,
		Backend:          s.live,
		Media:            media,
		Speaker:          newClockSpeaker(s.callCfg.OutputSampleRate),
		InputSampleRate:  s.callCfg.InputSampleRate,
		OutputSampleRate: s.callCfg.OutputSampleRate,
		FrameRate:        s.callCfg.FrameRate,
		Metrics:          s.metrics,
		Logger:           &s.log,
		Observer: call.Observer{
			OnState: func(st call.State, err error) {
				msg := serverMessage{Type: "state", State: st.String()}
				if err != nil {
					msg.Error = err.Error()
				}
				out.send(msg)
			},
			OnTranscript: func(t models.Transcript) {
				out.send(serverMessage{Type: "transcript", Author: string(t.Author), Text: t.Text})
			},
			OnAudio: func(start time.Duration, pcm []byte) {
				out.send(serverMessage{Type: "audio", Start: start.Seconds(), Data: pcm})
			},
			OnInterrupt: func() {
				out.send(serverMessage{Type: "interrupt"})
			},
		},
	})
	if err != nil {
		out.send(serverMessage{Type: "state", State: call.StateError.String(), Error: err.Error()})
		return
	}

	go s.readCall(conn, sess, media)

	if err := sess.Run(s.base); err != nil {
		s.log.Warn().Err(err).Str("agent", agent.ID).Msg("call ended with error")
	}
	out.close()
}

// readCall feeds client messages into the session until the socket closes.
func (s *Server) readCall(conn *websocket.Conn, sess *call.Session, media *wsMedia) {
	defer sess.HangUp()
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind == websocket.BinaryMessage {
			media.pushAudio(data)
			continue
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Debug().Err(err).Msg("bad call message")
			continue
		}
		switch msg.Type {
		case "hangup":
			return
		case "ready":
			media.markReady()
		case "error":
			media.fail(msg.Error)
		case "frame":
			media.setFrame(msg.Data)
		case "audio":
			media.pushAudio(msg.Data)
		}
	}
}

// wsWriter serializes writes; gorilla connections allow one writer.
type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
	done bool
}

func (w *wsWriter) send(msg serverMessage) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return
	}
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := w.conn.WriteJSON(msg); err != nil {
		w.done = true
	}
}

func (w *wsWriter) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return
	}
	w.done = true
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteTimeout))
}

// wsMedia is capture performed by the browser and relayed over the socket.
type wsMedia struct {
	mu      sync.Mutex
	audio   chan []byte
	frame   []byte
	closed  bool
	openErr error

	ready   chan struct{}
	settled sync.Once
}

func newWSMedia() *wsMedia {
	return &wsMedia{
		audio: make(chan []byte, wsAudioBuffer),
		ready: make(chan struct{}),
	}
}

// Open waits for the browser to report whether capture started.
func (m *wsMedia) Open(ctx context.Context) (call.Media, error) {
	select {
	case <-m.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil {
		return nil, m.openErr
	}
	return m, nil
}

func (m *wsMedia) markReady() { m.settle(nil) }

func (m *wsMedia) fail(reason string) {
	if reason == "" {
		reason = "unknown error"
	}
	m.settle(fmt.Errorf("server: browser media unavailable: %s", reason))
}

// settle records the first ready or failure report; later ones are ignored.
func (m *wsMedia) settle(err error) {
	m.settled.Do(func() {
		m.mu.Lock()
		m.openErr = err
		m.mu.Unlock()
		close(m.ready)
	})
}

func (m *wsMedia) Audio() <-chan []byte { return m.audio }

func (m *wsMedia) Frame() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame, m.frame != nil
}

func (m *wsMedia) pushAudio(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.audio <- pcm:
	default:
	}
}

func (m *wsMedia) setFrame(jpeg []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(jpeg) > 0 {
		m.frame = jpeg
	}
}

func (m *wsMedia) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.audio)
	}
	return nil
}

// clockSpeaker keeps the playback clock for a remote player. Audio is sent
// to the browser with its start offset; the speaker only tracks when each
// chunk will have finished.
type clockSpeaker struct {
	rate  int
	start time.Time

	mu      sync.Mutex
	sources map[*timedSource]struct{}
}

func newClockSpeaker(rate int) *clockSpeaker {
	if rate <= 0 {
		rate = call.DefaultOutputSampleRate
	}
	return &clockSpeaker{rate: rate, start: time.Now(), sources: make(map[*timedSource]struct{})}
}

func (c *clockSpeaker) Now() time.Duration { return time.Since(c.start) }

func (c *clockSpeaker) Schedule(pcm []byte, at time.Duration) (call.Source, error) {
	src := &timedSource{done: make(chan struct{})}
	wait := at + call.PCMDuration(pcm, c.rate) - c.Now()
	src.timer = time.AfterFunc(wait, func() {
		src.finish()
		c.forget(src)
	})
	c.mu.Lock()
	select {
	case <-src.done:
	default:
		c.sources[src] = struct{}{}
	}
	c.mu.Unlock()
	return src, nil
}

func (c *clockSpeaker) forget(src *timedSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sources, src)
}

func (c *clockSpeaker) Close() error {
	c.mu.Lock()
	sources := c.sources
	c.sources = make(map[*timedSource]struct{})
	c.mu.Unlock()
	for src := range sources {
		src.Stop()
	}
	return nil
}

type timedSource struct {
	timer *time.Timer
	once  sync.Once
	done  chan struct{}
}

func (t *timedSource) Stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
	t.finish()
}

func (t *timedSource) finish() { t.once.Do(func() { close(t.done) }) }

func (t *timedSource) Done() <-chan struct{} { return t.done }
