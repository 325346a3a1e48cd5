// Package cli contains the rinkctl commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/rink-sequences/internal/config"
	"github.com/DoyleJ11/rink-sequences/internal/dataapi"
)

var (
	// Global flags
	configPath   string
	dataURL      string
	outputFormat string
	timeout      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "rinkctl",
	Short: "Query the play-by-play data API and render sequences",
	Long: `rinkctl talks to the same data API as the dashboard server.

Examples:
  rinkctl games
  rinkctl sequences --date 2023-01-10
  rinkctl plays --sequence 42 --format json
  rinkctl render --sequence 42 -W 800 -H 340 -o seq42.svg
  rinkctl mermaid --sequence 42`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dataURL, "data-url", "", "Data API base URL (default: DATA_URL)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "yaml", "Output format: yaml | json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", dataapi.DefaultTimeout, "Request timeout")
}

func newFetcher() (dataapi.Fetcher, error) {
	base := dataURL
	if base == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		base = cfg.Data.URL
	}
	return dataapi.NewClient(dataapi.ClientConfig{BaseURL: base, Timeout: timeout})
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, timeout)
}

func printResult(w io.Writer, v any) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown format %q (want yaml or json)", outputFormat)
	}
}
