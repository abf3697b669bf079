package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zulandar/ensemble/internal/models"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the conversation",
	}

	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryClearCmd())
	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			history := a.store.Messages()
			if limit > 0 && len(history) > limit {
				history = history[len(history)-limit:]
			}
			out := cmd.OutOrStdout()
			for _, m := range history {
				fmt.Fprintln(out, formatMessage(m))
			}
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last n messages")
	return cmd
}

func formatMessage(m models.ChatMessage) string {
	name := m.Author.Name
	if m.Author.IsAgent() {
		name = fmt.Sprintf("%s (%s)", name, m.Author.Profile.Profession)
	}
	return fmt.Sprintf("[%s] %s: %s", m.Timestamp.Local().Format("2006-01-02 15:04"), name, m.Text)
}

func newHistoryClearCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the conversation",
		Long:  "Deletes every message and starts over with a fresh welcome message.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if !yes && !confirm(cmd, "Clear the whole conversation?") {
				fmt.Fprintln(out, "Aborted.")
				return nil
			}
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			if err := a.store.ClearHistory(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(out, "Conversation cleared.")
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

// confirm asks a yes/no question on stdin.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
