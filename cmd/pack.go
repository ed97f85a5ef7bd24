package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdserve/mdserve/internal/archive"
	"github.com/mdserve/mdserve/internal/config"
)

var packOutput string

var packCmd = &cobra.Command{
	Use:   "pack <path>",
	Short: "Bundle documents into a container",
	Long: `Bundle a document file or directory tree into a zip container with
maximum compression. An interactive prompt asks for an optional password;
empty input packs unencrypted. If no conventional root manifest (README.md
or index.md) is among the documents, one is generated listing them.

Examples:
  mdserve pack docs/                 # writes docs.zip
  mdserve pack guide.md -o out.zip`,
	Args: cobra.ExactArgs(1),
	RunE: runPack,
}

func init() {
	rootCmd.AddCommand(packCmd)
	packCmd.Flags().StringVarP(&packOutput, "output", "o", "", "output container path (default <source>.zip)")
	bindDocumentFlags(packCmd.Flags())
}

func runPack(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	sourcePath := args[0]
	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("input path: %w", err)
	}

	result, err := archive.Pack(sourcePath, info.IsDir(), archive.PackOptions{
		Pattern:    cfg.Documents.Pattern,
		IgnoreFile: cfg.Documents.IgnoreFile,
		OutputPath: packOutput,
		Prompt:     archive.TerminalPrompt,
		Logger:     newLogger(),
	})
	if err != nil {
		return err
	}

	encrypted := ""
	if result.Encrypted {
		encrypted = " (encrypted)"
	}
	fmt.Printf("Packed %d documents into %s%s (%d bytes)\n",
		result.Documents, result.OutputPath, encrypted, result.Bytes)
	return nil
}
