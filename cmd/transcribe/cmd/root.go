package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whisper-transcribe/cmd/transcribe/cmd/cmdutil"
	configcmd "whisper-transcribe/cmd/transcribe/cmd/config"
	"whisper-transcribe/cmd/transcribe/cmd/engines"
	"whisper-transcribe/cmd/transcribe/cmd/version"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/converter"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/config"
)

const usage = "Usage: transcribe path_to_audio_file [path_to_output_text_file]"

// errReported marks an error that has already been logged.
var errReported = apperrors.New("error reported")

type options struct {
	model     string
	engine    string
	language  string
	prompt    string
	modelsDir string
	threads   int
	progress  bool
}

// NewRootCmd builds the transcribe command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "transcribe AUDIO_FILE [OUTPUT_FILE]",
		Short: "Transcribe one audio file to a text file with a speech recognition model",
		Long: `Transcribe one audio file to a text file with a speech recognition model.

The text is written to OUTPUT_FILE, or to <audio name>.txt in the current
directory. A leading "~" is expanded in both paths. The default engine runs the
whisper.cpp command line tool with a ggml model from the models directory.`,
		Args:             validateArgs,
		SilenceUsage:     true,
		SilenceErrors:    true,
		TraverseChildren: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	cmdutil.AddPersistentFlags(rootCmd)

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.model, "model", "m", config.DefaultModel, "model name (tiny, base, small, medium, large-v3, ...) or ggml file path")
	flags.StringVarP(&opts.engine, "engine", "e", config.DefaultEngine, "transcription engine (see 'transcribe engines')")
	flags.StringVarP(&opts.language, "language", "l", "", "spoken language code; empty detects it")
	flags.StringVar(&opts.prompt, "prompt", "", "initial prompt to guide spelling and style")
	flags.StringVar(&opts.modelsDir, "models-dir", config.DefaultModelsDir, "directory holding ggml model files")
	flags.IntVarP(&opts.threads, "threads", "t", 0, "decoder threads; 0 uses the engine default")
	flags.BoolVar(&opts.progress, "progress", false, "show a spinner while the model works (terminal only)")

	rootCmd.AddCommand(version.NewCmd())
	rootCmd.AddCommand(engines.NewCmd())
	rootCmd.AddCommand(configcmd.NewCmd())

	return rootCmd
}

// Execute runs the command line and exits 1 on any error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// validateArgs requires the audio path. Arguments after the output path are
// ignored.
func validateArgs(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(cmd.OutOrStdout(), usage)
		return apperrors.New("missing audio file argument")
	}
	return nil
}

// apply copies explicitly set flags over the file and environment values.
func (o *options) apply(flags interface{ Changed(string) bool }) func(*config.Settings) error {
	return func(s *config.Settings) error {
		if flags.Changed("model") {
			s.Model = o.model
		}
		if flags.Changed("engine") {
			s.Engine = o.engine
		}
		if flags.Changed("language") {
			s.Language = o.language
		}
		if flags.Changed("prompt") {
			s.Prompt = o.prompt
		}
		if flags.Changed("models-dir") {
			s.ModelsDir = o.modelsDir
		}
		if flags.Changed("threads") {
			s.Threads = o.threads
		}
		if flags.Changed("progress") {
			s.Progress = o.progress
		}
		return nil
	}
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	audioPath := args[0]
	outputPath := ""
	if len(args) > 1 {
		outputPath = args[1]
	}

	cfg, res, err := cmdutil.LoadConfig(cmd, opts.apply(cmd.Flags()))
	var settings *config.Settings
	if cfg != nil {
		settings = &cfg.Settings
	}
	logger := cmdutil.Logger(cmd, settings)
	defer logger.Sync() //nolint:errcheck

	logger.Info("audio file", zap.String("path", audioPath))
	logger.Info("output path", zap.String("path", outputPath))
	if len(args) > 2 {
		logger.Warn("ignoring extra arguments", zap.Strings("args", args[2:]))
	}

	if err != nil {
		return report(logger, err)
	}
	cmdutil.LogLoadResult(logger, res)

	engine, err := provider.CreateProvider(cfg, logger)
	if err != nil {
		return report(logger, err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Settings.Timeout)
		defer cancel()
	}

	c := converter.NewConverter(engine, cfg.Settings.Model, logger.Named("converter"), converter.ProgressConfig{
		Enabled: converter.ShouldShowProgress(cfg.Settings.Progress),
		Writer:  cmd.ErrOrStderr(),
	})
	if _, err := c.Do(ctx, converter.Request{AudioPath: audioPath, OutputPath: outputPath}); err != nil {
		return report(logger, err)
	}

	logger.Info("complete")
	return nil
}

func report(logger *zap.Logger, err error) error {
	logger.Error("an error occurred", zap.Error(err))
	return apperrors.Mark(err, errReported)
}
