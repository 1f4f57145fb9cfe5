package engines

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"whisper-transcribe/cmd/transcribe/cmd/cmdutil"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/common"
	"whisper-transcribe/internal/config"
)

// NewCmd returns the engines command
func NewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List the transcription engines built into this binary",
		Long: `List the transcription engines built into this binary.

An engine that cannot be used with the current configuration (missing API key,
missing build tag) is listed with the reason.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := cmdutil.LoadConfig(cmd, nil)
			if err != nil {
				return err
			}
			infos, failures := provider.DescribeProviders(cfg)
			return printEngines(cmd.OutOrStdout(), cfg, infos, failures)
		},
	}
}

func printEngines(out io.Writer, cfg *config.Config, infos []common.ProviderInfo, failures map[string]error) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tDEFAULT MODEL\tREQUIRES\tSTATUS")

	for _, info := range infos {
		name := info.Name
		if name == cfg.Settings.Engine {
			name += " *"
		}

		status := "ok"
		if err, failed := failures[info.Name]; failed {
			status = err.Error()
		} else if info.Unavailable != "" {
			status = info.Unavailable
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			name, orDash(string(info.Type)), orDash(info.DefaultModel), orDash(requirements(info)), status)
	}
	return w.Flush()
}

func requirements(info common.ProviderInfo) string {
	reqs := lo.Compact([]string{
		lo.Ternary(info.RequiresInternet, "internet", ""),
		lo.Ternary(info.RequiresAPIKey, "api key", ""),
		lo.Ternary(info.RequiresBinary, "whisper-cli", ""),
		lo.Ternary(info.RequiresBuildTag != "", "-tags "+info.RequiresBuildTag, ""),
	})
	return strings.Join(reqs, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
