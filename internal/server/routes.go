package server

import (
	"errors"
	"io"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zulandar/ensemble/internal/call"
	"github.com/zulandar/ensemble/internal/ensemble"
	"github.com/zulandar/ensemble/internal/models"
	"github.com/zulandar/ensemble/internal/persona"
)

func (s *Server) registerRoutes() {
	r := s.router

	staticFS, _ := fs.Sub(webFS, "web")
	r.StaticFS("/static", http.FS(staticFS))
	r.GET("/", s.handleIndex)

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	api.GET("/status", s.handleStatus)
	api.GET("/options", s.handleOptions)

	api.GET("/agents", s.handleListAgents)
	api.POST("/agents", s.handleCreateAgent)
	api.PUT("/agents/:id", s.handleUpdateAgent)
	api.DELETE("/agents/:id", s.handleDeleteAgent)
	api.GET("/agents/:id/prompt", s.handleAgentPrompt)
	api.POST("/agents/:id/preview", s.handlePreview)

	api.GET("/profile", s.handleGetProfile)
	api.PUT("/profile", s.handlePutProfile)
	api.PUT("/key", s.handlePutKey)

	api.GET("/messages", s.handleListMessages)
	api.POST("/messages", s.handleSend)
	api.DELETE("/messages", s.handleClear)

	api.GET("/events", s.handleEvents)
	api.GET("/call/:agentID", s.handleCall)
}

func (s *Server) store() *ensemble.Store { return s.svc.Store() }

func (s *Server) handleIndex(c *gin.Context) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		abort(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

type statusResponse struct {
	APIKeyConfigured bool   `json:"apiKeyConfigured"`
	Busy             bool   `json:"busy"`
	Thinking         bool   `json:"thinking"`
	Indicator        string `json:"indicator,omitempty"`
}

func (s *Server) handleStatus(c *gin.Context) {
	thinking, text := s.store().Indicator()
	c.JSON(http.StatusOK, statusResponse{
		APIKeyConfigured: s.svc.HasAPIKey(),
		Busy:             s.svc.Busy(),
		Thinking:         thinking,
		Indicator:        text,
	})
}

// optionsResponse lists the choices the agent editor offers.
type optionsResponse struct {
	Genders        []models.Gender           `json:"genders"`
	Emotions       []models.Emotion          `json:"emotions"`
	Professions    []models.Profession       `json:"professions"`
	Traits         []models.PersonalityTrait `json:"traits"`
	Voices         []string                  `json:"voices"`
	SpeakingStyles []models.SpeakingStyle    `json:"speakingStyles"`
}

func (s *Server) handleOptions(c *gin.Context) {
	c.JSON(http.StatusOK, optionsResponse{
		Genders:        models.AllGenders,
		Emotions:       models.AllEmotions,
		Professions:    models.AllProfessions,
		Traits:         models.AllTraits,
		Voices:         models.PrebuiltVoices,
		SpeakingStyles: models.AllSpeakingStyles,
	})
}

func (s *Server) handleListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, s.store().Agents())
}

// handleCreateAgent adds the posted agent, or a starter agent when the body
// is empty.
func (s *Server) handleCreateAgent(c *gin.Context) {
	ctx := c.Request.Context()
	var a models.Agent
	if err := c.ShouldBindJSON(&a); err != nil {
		if !errors.Is(err, io.EOF) {
			abort(c, http.StatusBadRequest, err)
			return
		}
		created, err := s.store().NewAgent(ctx)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
		return
	}
	if a.ID == "" {
		a.ID = "agent-" + uuid.NewString()
	}
	if err := s.store().AddAgent(ctx, &a); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) handleUpdateAgent(c *gin.Context) {
	var a models.Agent
	if err := c.ShouldBindJSON(&a); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	id := c.Param("id")
	if err := s.store().UpdateAgent(c.Request.Context(), id, a); err != nil {
		fail(c, err)
		return
	}
	if a.ID == "" {
		a.ID = id
	}
	updated, _ := s.store().Agent(a.ID)
	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteAgent(c *gin.Context) {
	if err := s.store().RemoveAgent(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleAgentPrompt(c *gin.Context) {
	a, ok := s.store().Agent(c.Param("id"))
	if !ok {
		fail(c, ensemble.ErrAgentNotFound)
		return
	}
	c.String(http.StatusOK, persona.BuildSystemPrompt(a, s.store().Agents()))
}

type previewRequest struct {
	Text string `json:"text"`
}

// handlePreview speaks a sample sentence in the agent's voice and returns
// it as a WAV file.
func (s *Server) handlePreview(c *gin.Context) {
	a, ok := s.store().Agent(c.Param("id"))
	if !ok {
		fail(c, ensemble.ErrAgentNotFound)
		return
	}
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if req.Text == "" {
		req.Text = ensemble.PreviewText(a)
	}

	pcm, err := s.svc.PreviewVoice(c.Request.Context(), a.Voice(), a.Style(), req.Text)
	if err != nil {
		code := http.StatusBadGateway
		if errors.Is(err, ensemble.ErrNoAPIKey) {
			code = http.StatusPreconditionFailed
		}
		s.log.Warn().Err(err).Str("agent", a.ID).Msg("voice preview failed")
		abort(c, code, err)
		return
	}
	c.Data(http.StatusOK, "audio/wav", wav(pcm, call.DefaultOutputSampleRate))
}

func (s *Server) handleGetProfile(c *gin.Context) {
	c.JSON(http.StatusOK, s.store().Profile())
}

func (s *Server) handlePutProfile(c *gin.Context) {
	var p models.UserProfile
	if err := c.ShouldBindJSON(&p); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if err := s.store().SetProfile(c.Request.Context(), p); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.store().Profile())
}

type keyRequest struct {
	Key string `json:"key"`
}

func (s *Server) handlePutKey(c *gin.Context) {
	var req keyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if err := s.store().SetAPIKey(c.Request.Context(), req.Key); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListMessages(c *gin.Context) {
	c.JSON(http.StatusOK, s.store().Messages())
}

type sendRequest struct {
	Text string `json:"text"`
}

// handleSend starts a turn and returns immediately. Replies arrive on the
// event stream.
func (s *Server) handleSend(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if _, err := s.svc.Start(s.base, req.Text); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

func (s *Server) handleClear(c *gin.Context) {
	if err := s.store().ClearHistory(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
