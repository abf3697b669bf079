package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zulandar/ensemble/internal/tui"
)

func newChatCmd() *cobra.Command {
	var (
		configPath string
		logFile    string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the ensemble in the terminal",
		Long:  "Opens a full-screen terminal chat. Type a message and press Enter; the agents reply one at a time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, configPath, logFile)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file (logs are discarded by default)")
	return cmd
}

func runChat(cmd *cobra.Command, configPath, logFile string) error {
	// The chat owns the terminal, so logs never go to stderr.
	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}

	a, err := openApp(cmd, configPath, appOpts{LogOutput: logOut})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	return tui.Run(ctx, a.svc)
}
