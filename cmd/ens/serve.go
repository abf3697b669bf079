package main

import (
	"github.com/spf13/cobra"
	"github.com/zulandar/ensemble/internal/logger"
	"github.com/zulandar/ensemble/internal/server"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI and HTTP API",
		Long:  "Starts the HTTP server: the JSON API, the event stream, live calls over websocket and the embedded web page.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	a, err := openApp(cmd, configPath, appOpts{})
	if err != nil {
		return err
	}
	if port <= 0 {
		port = a.cfg.Server.Port
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	serverLog := logger.Component(a.log, "server")
	srv, err := server.New(server.Opts{
		Service: a.svc,
		Live:    a.gemini,
		Call:    a.cfg.Call,
		Metrics: a.metrics,
		Logger:  &serverLog,
		Base:    ctx,
	})
	if err != nil {
		return err
	}
	if !a.svc.HasAPIKey() {
		a.log.Warn().Str("env", a.cfg.Gemini.APIKeyEnv).Msg("no API key configured; set one with `ens key set`")
	}
	return srv.Start(ctx, server.StartOpts{Port: port, Out: cmd.OutOrStdout()})
}
