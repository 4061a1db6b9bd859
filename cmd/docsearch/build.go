package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/docsearch/internal/builder"
	"github.com/spf13/cobra"
)

var (
	buildSource string
	buildOut    string
	buildWatch  bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Index the source directory and write the search index file",
	Long: `Reads every matching file directly inside the source directory,
indexes titles and text, and writes the index file. Unparseable files are
skipped and reported. With --watch, rebuilds after every change.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildSource, "source", "", "source directory (default from config)")
	buildCmd.Flags().StringVar(&buildOut, "out", "", "index output file (default from config)")
	buildCmd.Flags().BoolVar(&buildWatch, "watch", false, "rebuild when the source directory changes")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildSource != "" {
		cfg.SourceDir = buildSource
	}
	if buildOut != "" {
		cfg.OutputPath = buildOut
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	b := builder.New(builder.OptionsFromConfig(cfg), log)
	report, err := b.Build()
	if err != nil {
		return err
	}
	for _, s := range report.Skipped {
		cmd.PrintErrf("skipped %s: %s\n", s.File, s.Reason)
	}
	cmd.Printf("indexed %d documents, skipped %d, wrote %s\n", report.Indexed, len(report.Skipped), report.OutputPath)

	if !buildWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return b.Watch(ctx, cfg.WatchDelay, func(r *builder.Report, err error) {
		if err == nil {
			cmd.Printf("rebuilt: indexed %d documents, skipped %d\n", r.Indexed, len(r.Skipped))
		}
	})
}
