package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the Gemini API key",
	}

	cmd.AddCommand(newKeySetCmd())
	cmd.AddCommand(newKeyClearCmd())
	cmd.AddCommand(newKeyStatusCmd())
	return cmd
}

func newKeySetCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "set [key]",
		Short: "Store the Gemini API key",
		Long:  "Stores the API key in the database. With no argument the key is read from stdin, without echo on a terminal.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			key := ""
			if len(args) == 1 {
				key = args[0]
			} else {
				fmt.Fprint(cmd.ErrOrStderr(), "Gemini API key: ")
				if key, err = readSecret(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("read key: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr())
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return fmt.Errorf("key set: key is empty")
			}
			if err := a.store.SetAPIKey(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key saved (%s)\n", maskKey(key))
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

// readSecret reads one line, hiding input when in is a terminal.
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		return string(b), err
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return line, nil
}

func newKeyClearCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			if err := a.store.SetAPIKey(cmd.Context(), ""); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stored API key removed")
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newKeyStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is configured",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			src := a.keySource()
			if src == "" {
				fmt.Fprintf(out, "API key: not configured (run `ens key set` or set $%s)\n", a.cfg.Gemini.APIKeyEnv)
				return nil
			}
			fmt.Fprintf(out, "API key: configured from %s (%s)\n", src, maskKey(a.apiKey()))
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

// maskKey shows only the last four characters of a key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", 4) + key[len(key)-4:]
}
