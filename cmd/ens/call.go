package main

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"github.com/zulandar/ensemble/internal/call"
	"github.com/zulandar/ensemble/internal/call/device"
	"github.com/zulandar/ensemble/internal/ensemble"
	"github.com/zulandar/ensemble/internal/logger"
	"github.com/zulandar/ensemble/internal/models"
)

func newCallCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "call <agent-id>",
		Short: "Start a live voice call with an agent",
		Long:  "Opens the microphone and speaker and talks to one agent in real time. Press Enter or Ctrl+C to hang up.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(cmd, configPath, args[0])
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runCall(cmd *cobra.Command, configPath, agentID string) error {
	out := cmd.OutOrStdout()

	a, err := openApp(cmd, configPath, appOpts{})
	if err != nil {
		return err
	}
	agent, ok := a.store.Agent(agentID)
	if !ok {
		return fmt.Errorf("call: %w: %s", ensemble.ErrAgentNotFound, agentID)
	}
	if !a.svc.HasAPIKey() {
		return fmt.Errorf("call: %w", ensemble.ErrNoAPIKey)
	}

	speaker, err := device.NewSpeaker(a.cfg.Call.OutputSampleRate)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	printf := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, format, args...)
	}

	callLog := logger.Component(a.log, "call")
	session, err := call.NewSession(call.SessionOpts{
		Agent:   agent,
		Backend: a.gemini,
		Media: device.Microphone{
			SampleRate: a.cfg.Call.InputSampleRate,
		},
		Speaker:          speaker,
		InputSampleRate:  a.cfg.Call.InputSampleRate,
		OutputSampleRate: a.cfg.Call.OutputSampleRate,
		FrameRate:        a.cfg.Call.FrameRate,
		Observer: call.Observer{
			OnState: func(s call.State, err error) {
				if err != nil {
					printf("[%s] %v\n", s, err)
					return
				}
				printf("[%s]\n", s)
			},
			OnTranscript: func(t models.Transcript) {
				name := string(t.Author)
				if t.Author == models.SpeakerAgent {
					name = agent.Name
				}
				printf("%s: %s\n", name, t.Text)
			},
			OnInterrupt: func() { printf("(interrupted)\n") },
		},
		Metrics: a.metrics,
		Logger:  &callLog,
	})
	if err != nil {
		speaker.Close()
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	printf("Calling %s (%s). Press Enter to hang up.\n", agent.Name, agent.Profession)
	go waitForEnter(cmd.InOrStdin(), session.HangUp)

	if err := session.Run(ctx); err != nil {
		return err
	}
	printf("Call ended after %d transcript lines.\n", len(session.Transcripts()))
	return nil
}

func waitForEnter(in io.Reader, fn func()) {
	reader := bufio.NewReader(in)
	if _, err := reader.ReadString('\n'); err == nil {
		fn()
	}
}
