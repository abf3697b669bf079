package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/zulandar/ensemble/internal/bridge"
	discordadapter "github.com/zulandar/ensemble/internal/bridge/discord"
	slackadapter "github.com/zulandar/ensemble/internal/bridge/slack"
	"github.com/zulandar/ensemble/internal/config"
	"github.com/zulandar/ensemble/internal/logger"
)

func newBridgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Mirror the conversation to Slack or Discord",
	}

	cmd.AddCommand(newBridgeStartCmd())
	return cmd
}

func newBridgeStartCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the chat platform bridge",
		Long: `Connects to the platform named by bridge.platform. Messages posted in the
configured channel start turns, and every agent reply is posted back.
With bridge.digest.enabled, an activity digest is posted on the cron schedule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBridgeStart(cmd, configPath)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runBridgeStart(cmd *cobra.Command, configPath string) error {
	a, err := openApp(cmd, configPath, appOpts{})
	if err != nil {
		return err
	}
	if a.cfg.Bridge.Platform == "" {
		return fmt.Errorf("bridge: bridge.platform is not set in %s", configPath)
	}

	adapterLog := logger.Component(a.log, a.cfg.Bridge.Platform)
	adapter, err := createAdapter(a.cfg, &adapterLog)
	if err != nil {
		return err
	}

	cron := ""
	if a.cfg.Bridge.Digest.Enabled {
		cron = a.cfg.Bridge.Digest.Cron
	}
	bridgeLog := logger.Component(a.log, "bridge")
	daemon, err := bridge.NewDaemon(bridge.DaemonOpts{
		Service:    a.svc,
		Adapter:    adapter,
		ChannelID:  channelID(a.cfg),
		DigestCron: cron,
		Metrics:    a.metrics,
		Logger:     &bridgeLog,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Bridge running on %s\n", a.cfg.Bridge.Platform)
	return daemon.Run(ctx)
}

// createAdapter builds a platform adapter from the config.
func createAdapter(cfg *config.Config, log *zerolog.Logger) (bridge.Adapter, error) {
	switch cfg.Bridge.Platform {
	case "slack":
		return slackadapter.New(slackadapter.AdapterOpts{
			AppToken:  cfg.Bridge.Slack.AppToken,
			BotToken:  cfg.Bridge.Slack.BotToken,
			ChannelID: cfg.Bridge.Slack.ChannelID,
			Logger:    log,
		})
	case "discord":
		return discordadapter.New(discordadapter.AdapterOpts{
			BotToken:  cfg.Bridge.Discord.BotToken,
			ChannelID: cfg.Bridge.Discord.ChannelID,
			Logger:    log,
		})
	default:
		return nil, fmt.Errorf("bridge: unsupported platform %q", cfg.Bridge.Platform)
	}
}

func channelID(cfg *config.Config) string {
	switch cfg.Bridge.Platform {
	case "slack":
		return cfg.Bridge.Slack.ChannelID
	case "discord":
		return cfg.Bridge.Discord.ChannelID
	}
	return ""
}
