package main

import (
	"log/slog"
	"os"

	"github.com/dgallion1/docsearch/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string

	cfg config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docsearch",
	Short: "Build and serve a static full-text search index for documentation",
	Long: `docsearch turns a directory of documentation pages into a single
search index file, and serves a search page that queries it.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (default $DOCSEARCH_CONFIG)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if log == nil {
			log = slog.New(slog.NewJSONHandler(os.Stdout, nil))
		}
		log.Error("docsearch failed", "error", err)
		os.Exit(1)
	}
}
