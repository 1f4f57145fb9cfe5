package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"whisper-transcribe/cmd/transcribe/cmd/cmdutil"
	apperrors "whisper-transcribe/internal/app/errors"
	appconfig "whisper-transcribe/internal/config"
)

// NewCmd returns the config command group
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	cmd.AddCommand(newShowCmd(), newInitCmd())
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration (file, environment, defaults)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, res, err := cmdutil.LoadConfig(cmd, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			source := res.ConfigFile
			if source == "" {
				source = "none"
			}
			fmt.Fprintf(out, "# config file: %s\n", source)

			data, err := yaml.Marshal(&cfg.Settings)
			if err != nil {
				return err
			}
			if _, err := out.Write(data); err != nil {
				return err
			}

			keys := cfg.APIKeys
			fmt.Fprintf(out, "# api keys: openai=%s gemini=%s elevenlabs=%s\n",
				keyState(keys.OpenAI), keyState(keys.Gemini), keyState(keys.ElevenLabs))
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a config file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString(cmdutil.FlagConfig)
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = appconfig.GetDefaultConfigPath()
			}
			if path == "" {
				return apperrors.RequiredField("config path")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return apperrors.Newf("%s already exists (use --force to overwrite)", path)
			}

			settings := appconfig.DefaultSettings()
			if err := appconfig.SaveFile(&settings, path); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func keyState(key string) string {
	if key == "" {
		return "unset"
	}
	return "set"
}
