package main

import (
	"encoding/json"
	"fmt"

	"github.com/dgallion1/docsearch/internal/index"
	"github.com/spf13/cobra"
)

var (
	searchIndex string
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query a built index file from the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchIndex, "index", "", "index file (default from config output)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results, 0 for all")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	path := searchIndex
	if path == "" {
		path = cfg.OutputPath
	}

	ix, err := index.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	defer ix.Close()

	hits, err := ix.Search(args[0], searchLimit)
	if err != nil {
		log.Warn("query rejected", "query", args[0], "error", err)
		hits = []index.Hit{}
	}

	if searchJSON {
		data, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(hits) == 0 {
		cmd.Printf("No results found for %q\n", args[0])
		return nil
	}
	for i, h := range hits {
		cmd.Printf("%2d. %s  %s  (%.3f)\n", i+1, h.Title, h.URL, h.Score)
	}
	return nil
}
