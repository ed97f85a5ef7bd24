package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdserve/mdserve/internal/config"
	"github.com/mdserve/mdserve/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <path> <query>",
	Short: "Search documents from the command line",
	Long: `Run the content search engine against a file, directory tree, or zip
container and print matching lines with their context.

Examples:
  mdserve search docs/ "install steps"
  mdserve search handbook.zip vacation`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	bindDocumentFlags(searchCmd.Flags())
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg.TargetPath = args[0]
	query := args[1]

	logger := newLogger()

	backend, cleanup, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	results, err := search.NewEngine(logger).Search(backend, query, cfg.Documents.Pattern)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for _, file := range results {
		fmt.Printf("%s\n", file.Path)
		for _, match := range file.Matches {
			fmt.Printf("  %d: %s\n", match.LineNumber, match.Text)
		}
	}
	return nil
}
