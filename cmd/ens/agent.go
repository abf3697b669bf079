package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/ensemble/internal/call"
	"github.com/zulandar/ensemble/internal/call/device"
	"github.com/zulandar/ensemble/internal/ensemble"
	"github.com/zulandar/ensemble/internal/models"
	"github.com/zulandar/ensemble/internal/persona"
)

func newAgentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Manage the agent roster",
	}

	cmd.AddCommand(newAgentListCmd())
	cmd.AddCommand(newAgentShowCmd())
	cmd.AddCommand(newAgentAddCmd())
	cmd.AddCommand(newAgentUpdateCmd())
	cmd.AddCommand(newAgentRemoveCmd())
	cmd.AddCommand(newAgentPromptCmd())
	cmd.AddCommand(newAgentPreviewCmd())
	return cmd
}

func newAgentListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents in the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPROFESSION\tEMOTION\tAGE\tVOICE")
			for _, ag := range a.store.Agents() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					ag.ID, truncate(ag.Name, 24), ag.Profession, ag.Emotion, ag.Age, ag.Voice())
			}
			return w.Flush()
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newAgentShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show an agent's full profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			ag, ok := a.store.Agent(args[0])
			if !ok {
				return fmt.Errorf("agent show: %w: %s", ensemble.ErrAgentNotFound, args[0])
			}
			printAgent(cmd, ag)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func printAgent(cmd *cobra.Command, ag models.Agent) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ID:          %s\n", ag.ID)
	fmt.Fprintf(out, "Name:        %s\n", ag.Name)
	fmt.Fprintf(out, "Profession:  %s\n", ag.Profession)
	fmt.Fprintf(out, "Emotion:     %s\n", ag.Emotion)
	fmt.Fprintf(out, "Gender:      %s\n", ag.Gender)
	fmt.Fprintf(out, "Age:         %d\n", ag.Age)
	fmt.Fprintf(out, "Traits:      %s\n", joinOptions(ag.PersonalityTraits))
	fmt.Fprintf(out, "Voice:       %s (%s)\n", ag.Voice(), ag.Style())
	if ag.AvatarURL != "" {
		fmt.Fprintf(out, "Avatar:      %s\n", ag.AvatarURL)
	}
}

// agentFlags are the editable agent attributes shared by add and update.
type agentFlags struct {
	name       string
	profession string
	emotion    string
	gender     string
	age        int
	traits     string
	voice      string
	style      string
	avatar     string
}

func (f *agentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "display name")
	cmd.Flags().StringVar(&f.profession, "profession", "", "profession, e.g. \"Software Engineer\"")
	cmd.Flags().StringVar(&f.emotion, "emotion", "", "emotional tone, e.g. \"Happy\" or \"Calm / Serene\"")
	cmd.Flags().StringVar(&f.gender, "gender", "", "Male, Female or Non-binary")
	cmd.Flags().IntVar(&f.age, "age", 0, "age in years")
	cmd.Flags().StringVar(&f.traits, "traits", "", "comma-separated personality traits")
	cmd.Flags().StringVar(&f.voice, "voice", "", "prebuilt voice name")
	cmd.Flags().StringVar(&f.style, "style", "", "speaking style, e.g. Calm or Cheerful")
	cmd.Flags().StringVar(&f.avatar, "avatar", "", "avatar image URL")
}

// apply copies every flag the user set onto ag.
func (f *agentFlags) apply(cmd *cobra.Command, ag *models.Agent) error {
	changed := cmd.Flags().Changed
	var err error
	if changed("name") {
		name := strings.TrimSpace(f.name)
		if name == "" {
			return fmt.Errorf("name must not be empty")
		}
		ag.Name = name
	}
	if changed("profession") {
		if ag.Profession, err = matchOption("profession", models.AllProfessions, f.profession); err != nil {
			return err
		}
	}
	if changed("emotion") {
		if ag.Emotion, err = matchOption("emotion", models.AllEmotions, f.emotion); err != nil {
			return err
		}
	}
	if changed("gender") {
		if ag.Gender, err = matchOption("gender", models.AllGenders, f.gender); err != nil {
			return err
		}
	}
	if changed("age") {
		if f.age <= 0 || f.age > 120 {
			return fmt.Errorf("age %d out of range", f.age)
		}
		ag.Age = f.age
	}
	if changed("traits") {
		if ag.PersonalityTraits, err = matchOptions("trait", models.AllTraits, f.traits); err != nil {
			return err
		}
	}
	if changed("voice") {
		if ag.VoiceName, err = matchOption("voice", models.PrebuiltVoices, f.voice); err != nil {
			return err
		}
		ag.VoiceType = models.VoicePrebuilt
	}
	if changed("style") {
		if ag.SpeakingStyle, err = matchOption("speaking style", models.AllSpeakingStyles, f.style); err != nil {
			return err
		}
	}
	if changed("avatar") {
		ag.AvatarURL = f.avatar
	}
	return nil
}

func newAgentAddCmd() *cobra.Command {
	var (
		configPath string
		flags      agentFlags
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an agent to the roster",
		Long:  "Adds a new agent with starter attributes. Any flags given override the starter values.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgentAdd(cmd, configPath, &flags)
		},
	}

	addConfigFlag(cmd, &configPath)
	flags.register(cmd)
	return cmd
}

func runAgentAdd(cmd *cobra.Command, configPath string, flags *agentFlags) error {
	a, err := openApp(cmd, configPath, appOpts{})
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	// Validate before creating so a bad flag never leaves a stray agent.
	probe := models.Agent{}
	if err := flags.apply(cmd, &probe); err != nil {
		return fmt.Errorf("agent add: %w", err)
	}

	ag, err := a.store.NewAgent(ctx)
	if err != nil {
		return err
	}
	if err := flags.apply(cmd, &ag); err != nil {
		return fmt.Errorf("agent add: %w", err)
	}
	if err := a.store.UpdateAgent(ctx, ag.ID, ag); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added agent %s (%s)\n", ag.ID, ag.Name)
	return nil
}

func newAgentUpdateCmd() *cobra.Command {
	var (
		configPath string
		flags      agentFlags
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an agent's attributes",
		Long:  "Updates only the attributes given as flags. Messages already written keep the profile the agent had at the time.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			ag, ok := a.store.Agent(args[0])
			if !ok {
				return fmt.Errorf("agent update: %w: %s", ensemble.ErrAgentNotFound, args[0])
			}
			if err := flags.apply(cmd, &ag); err != nil {
				return fmt.Errorf("agent update: %w", err)
			}
			if err := a.store.UpdateAgent(cmd.Context(), ag.ID, ag); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated agent %s (%s)\n", ag.ID, ag.Name)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	flags.register(cmd)
	return cmd
}

func newAgentRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove an agent from the roster",
		Long:    "Removes an agent. The last remaining agent cannot be removed.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			if err := a.store.RemoveAgent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed agent %s\n", args[0])
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newAgentPromptCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "prompt <id>",
		Short: "Print the system prompt an agent speaks with on calls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			ag, ok := a.store.Agent(args[0])
			if !ok {
				return fmt.Errorf("agent prompt: %w: %s", ensemble.ErrAgentNotFound, args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), persona.BuildSystemPrompt(ag, a.store.Agents()))
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newAgentPreviewCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "preview <id> [text]",
		Short: "Play a sample of an agent's voice",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := ""
			if len(args) == 2 {
				text = args[1]
			}
			return runAgentPreview(cmd, configPath, args[0], text)
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func runAgentPreview(cmd *cobra.Command, configPath, id, text string) error {
	a, err := openApp(cmd, configPath, appOpts{})
	if err != nil {
		return err
	}
	ag, ok := a.store.Agent(id)
	if !ok {
		return fmt.Errorf("agent preview: %w: %s", ensemble.ErrAgentNotFound, id)
	}
	if strings.TrimSpace(text) == "" {
		text = ensemble.PreviewText(ag)
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	pcm, err := a.svc.PreviewVoice(ctx, ag.Voice(), ag.Style(), text)
	if err != nil {
		return err
	}

	speaker, err := device.NewSpeaker(call.DefaultOutputSampleRate)
	if err != nil {
		return err
	}
	defer speaker.Close()

	src, err := speaker.Schedule(pcm, speaker.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Playing %s (%s, %s)\n", ag.Name, ag.Voice(), ag.Style())
	select {
	case <-src.Done():
	case <-ctx.Done():
		src.Stop()
	}
	return nil
}
