package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit your user profile",
	}

	cmd.AddCommand(newProfileShowCmd())
	cmd.AddCommand(newProfileSetCmd())
	return cmd
}

func newProfileShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			p := a.store.Profile()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:   %s\n", p.Name)
			bio := p.Bio
			if bio == "" {
				bio = "-"
			}
			fmt.Fprintf(out, "Bio:    %s\n", bio)
			if p.AvatarURL != "" {
				fmt.Fprintf(out, "Avatar: %s\n", p.AvatarURL)
			}
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	return cmd
}

func newProfileSetCmd() *cobra.Command {
	var (
		configPath string
		name       string
		bio        string
		avatar     string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update your profile",
		Long:  "Updates the fields given as flags. Agents see your name and bio when they reply.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, configPath, appOpts{})
			if err != nil {
				return err
			}
			p := a.store.Profile()
			if cmd.Flags().Changed("name") {
				if strings.TrimSpace(name) == "" {
					return fmt.Errorf("profile set: name must not be empty")
				}
				p.Name = strings.TrimSpace(name)
			}
			if cmd.Flags().Changed("bio") {
				p.Bio = bio
			}
			if cmd.Flags().Changed("avatar") {
				p.AvatarURL = avatar
			}
			if err := a.store.SetProfile(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Profile saved for %s\n", p.Name)
			return nil
		},
	}

	addConfigFlag(cmd, &configPath)
	cmd.Flags().StringVar(&name, "name", "", "your display name")
	cmd.Flags().StringVar(&bio, "bio", "", "a short bio the agents can see")
	cmd.Flags().StringVar(&avatar, "avatar", "", "avatar image URL")
	return cmd
}
