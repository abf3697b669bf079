// Package config provides YAML-based configuration loading for Ensemble.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Ensemble configuration, loaded from ensemble.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Turn     TurnConfig     `yaml:"turn"`
	Call     CallConfig     `yaml:"call"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Bridge   BridgeConfig   `yaml:"bridge"`
	Export   ExportConfig   `yaml:"export"`
}

// DatabaseConfig selects where persisted settings live.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "mysql"
	Path   string `yaml:"path"`   // sqlite file path
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	Name   string `yaml:"name"`
	User   string `yaml:"user"`
}

// GeminiConfig holds backend model names and where to find the API key.
type GeminiConfig struct {
	APIKeyEnv   string `yaml:"api_key_env"`
	ReplyModel  string `yaml:"reply_model"`
	SpeechModel string `yaml:"speech_model"`
	LiveModel   string `yaml:"live_model"`
}

// TurnConfig controls reply pacing. All delays are in milliseconds and
// sampled uniformly from [min, max).
type TurnConfig struct {
	HistoryLimit   int `yaml:"history_limit"`
	InitialMinMS   int `yaml:"initial_min_ms"`
	InitialMaxMS   int `yaml:"initial_max_ms"`
	TypingMinMS    int `yaml:"typing_min_ms"`
	TypingMaxMS    int `yaml:"typing_max_ms"`
	GapMinMS       int `yaml:"gap_min_ms"`
	GapMaxMS       int `yaml:"gap_max_ms"`
	FetchTimeoutMS int `yaml:"fetch_timeout_ms"` // 0 means no timeout
}

// CallConfig holds live call media parameters.
type CallConfig struct {
	InputSampleRate  int `yaml:"input_sample_rate"`
	OutputSampleRate int `yaml:"output_sample_rate"`
	FrameRate        int `yaml:"frame_rate"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LogConfig controls structured logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// BridgeConfig configures the chat platform mirror.
type BridgeConfig struct {
	Platform string        `yaml:"platform"` // "slack", "discord", or empty
	Slack    SlackConfig   `yaml:"slack"`
	Discord  DiscordConfig `yaml:"discord"`
	Digest   DigestConfig  `yaml:"digest"`
}

// SlackConfig holds Slack Socket Mode credentials.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	AppToken  string `yaml:"app_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord bot credentials.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DigestConfig schedules the activity digest posted to the bridge channel.
type DigestConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
}

// ExportConfig holds transcript export settings.
type ExportConfig struct {
	GitHubTokenEnv string `yaml:"github_token_env"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Parse(nil)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "ensemble.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.Name == "" {
			c.Database.Name = "ensemble"
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
	}

	if c.Gemini.APIKeyEnv == "" {
		c.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	}
	if c.Gemini.ReplyModel == "" {
		c.Gemini.ReplyModel = "gemini-2.5-flash"
	}
	if c.Gemini.SpeechModel == "" {
		c.Gemini.SpeechModel = "gemini-2.5-flash-preview-tts"
	}
	if c.Gemini.LiveModel == "" {
		c.Gemini.LiveModel = "gemini-2.5-flash-native-audio-preview-09-2025"
	}

	if c.Turn.HistoryLimit == 0 {
		c.Turn.HistoryLimit = 20
	}
	if c.Turn.InitialMinMS == 0 && c.Turn.InitialMaxMS == 0 {
		c.Turn.InitialMinMS, c.Turn.InitialMaxMS = 2000, 7000
	}
	if c.Turn.TypingMinMS == 0 && c.Turn.TypingMaxMS == 0 {
		c.Turn.TypingMinMS, c.Turn.TypingMaxMS = 500, 2000
	}
	if c.Turn.GapMinMS == 0 && c.Turn.GapMaxMS == 0 {
		c.Turn.GapMinMS, c.Turn.GapMaxMS = 2000, 6000
	}

	if c.Call.InputSampleRate == 0 {
		c.Call.InputSampleRate = 16000
	}
	if c.Call.OutputSampleRate == 0 {
		c.Call.OutputSampleRate = 24000
	}
	if c.Call.FrameRate == 0 {
		c.Call.FrameRate = 2
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Bridge.Digest.Cron == "" {
		c.Bridge.Digest.Cron = "0 9 * * *"
	}
	if c.Export.GitHubTokenEnv == "" {
		c.Export.GitHubTokenEnv = "GITHUB_TOKEN"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q must be sqlite or mysql", c.Database.Driver))
	}
	if c.Turn.HistoryLimit < 0 {
		errs = append(errs, "turn.history_limit must not be negative")
	}
	errs = append(errs, checkRange("turn.initial", c.Turn.InitialMinMS, c.Turn.InitialMaxMS)...)
	errs = append(errs, checkRange("turn.typing", c.Turn.TypingMinMS, c.Turn.TypingMaxMS)...)
	errs = append(errs, checkRange("turn.gap", c.Turn.GapMinMS, c.Turn.GapMaxMS)...)
	if c.Turn.FetchTimeoutMS < 0 {
		errs = append(errs, "turn.fetch_timeout_ms must not be negative")
	}
	if c.Call.InputSampleRate < 0 || c.Call.OutputSampleRate < 0 {
		errs = append(errs, "call sample rates must be positive")
	}
	if c.Call.FrameRate < 0 {
		errs = append(errs, "call.frame_rate must be positive")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch c.Bridge.Platform {
	case "":
	case "slack":
		if c.Bridge.Slack.BotToken == "" {
			errs = append(errs, "bridge.slack.bot_token is required")
		}
		if c.Bridge.Slack.AppToken == "" {
			errs = append(errs, "bridge.slack.app_token is required")
		}
	case "discord":
		if c.Bridge.Discord.BotToken == "" {
			errs = append(errs, "bridge.discord.bot_token is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("bridge.platform %q must be slack or discord", c.Bridge.Platform))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func checkRange(name string, lo, hi int) []string {
	if lo < 0 || hi < 0 {
		return []string{name + " delays must not be negative"}
	}
	if hi < lo {
		return []string{fmt.Sprintf("%s_max_ms (%d) must be >= %s_min_ms (%d)", name, hi, name, lo)}
	}
	return nil
}
