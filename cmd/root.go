// Package cmd provides the command-line interface for mdserve.
//
// Configuration sources in precedence order:
//  1. Command-line flags (--port, --config, ...)
//  2. MDSERVE_ prefixed environment variables (MDSERVE_SERVER_PORT, ...)
//  3. A .mdserve.yml configuration file in the working directory
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mdserve/mdserve/internal/config"
	"github.com/mdserve/mdserve/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mdserve",
	Short: "Serve and search markdown document collections",
	Long: `mdserve renders and serves a collection of markdown documents from a
single file, a directory tree, or a password-protectable zip container,
with full-text search across whichever source is active.

Quick Start:
  mdserve serve docs/          Serve a directory tree
  mdserve serve notes.md       Serve a single document
  mdserve serve docs.zip       Serve a packed container
  mdserve pack docs/           Bundle a tree into docs.zip
  mdserve search docs/ query   Search from the command line`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .mdserve.yml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig wires viper to the config file and environment before any
// subcommand runs.
func initConfig() {
	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mdserve")
	}

	viper.SetEnvPrefix("MDSERVE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or malformed config file degrades to defaults.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the merged configuration.
func newLogger() logging.Logger {
	return logging.NewLogger(&logging.Config{
		Level:  logging.ParseLevel(viper.GetString("log_level")),
		Format: "text",
		Output: os.Stderr,
	})
}
