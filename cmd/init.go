package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mdserve/mdserve/internal/config"
)

const configFileName = ".mdserve.yml"

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a .mdserve.yml with the default configuration to the current
directory, as a starting point for customization.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	if !initForce {
		if _, err := os.Stat(configFileName); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configFileName)
		}
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}

	if err := os.WriteFile(configFileName, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", configFileName, err)
	}

	fmt.Println("Wrote", configFileName)
	return nil
}
