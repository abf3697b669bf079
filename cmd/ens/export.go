package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/zulandar/ensemble/internal/export"
	"github.com/zulandar/ensemble/internal/logger"
)

func newExportCmd() *cobra.Command {
	var (
		configPath string
		output     string
		gist       bool
		public     bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the conversation as Markdown",
		Long: `Renders the conversation as a Markdown transcript.

By default the transcript is printed to stdout. With --output it is written
to a file ("-" keeps stdout, "auto" picks a timestamped name). With --gist
it is published as a GitHub gist using the token in the configured
environment variable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, configPath, output, gist, public)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file")
	cmd.Flags().BoolVar(&gist, "gist", false, "publish as a GitHub gist")
	cmd.Flags().BoolVar(&public, "public", false, "make the gist public")
	return cmd
}

func runExport(cmd *cobra.Command, configPath, output string, gist, public bool) error {
	out := cmd.OutOrStdout()

	a, err := openApp(cmd, configPath, appOpts{})
	if err != nil {
		return err
	}
	now := time.Now()
	md := export.Markdown(a.store.Messages(), now)

	if gist {
		token := os.Getenv(a.cfg.Export.GitHubTokenEnv)
		if token == "" {
			return fmt.Errorf("export: $%s is not set", a.cfg.Export.GitHubTokenEnv)
		}
		exportLog := logger.Component(a.log, "export")
		pub, err := export.NewPublisher(cmd.Context(), export.PublisherOpts{Token: token, Logger: &exportLog})
		if err != nil {
			return err
		}
		url, err := pub.Publish(cmd.Context(), md, public)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Gist published: %s\n", url)
		return nil
	}

	switch output {
	case "", "-":
		fmt.Fprint(out, md)
		return nil
	case "auto":
		output = export.Filename(now)
	}
	if err := os.WriteFile(output, []byte(md), 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", output, err)
	}
	fmt.Fprintf(out, "Transcript written to %s\n", output)
	return nil
}
