// Package cmd implements the command-line interface for the event importer.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dertown/eventscrape/cmd/checkupdates"
	"github.com/dertown/eventscrape/cmd/icsimport"
	"github.com/dertown/eventscrape/cmd/importcmd"
	cmdsources "github.com/dertown/eventscrape/cmd/sources"
	"github.com/dertown/eventscrape/internal/config"
)

var (
	// Debug enables debug mode for all commands
	Debug bool

	// rootCmd represents the root command for the eventscrape CLI.
	rootCmd = &cobra.Command{
		Use:   "eventscrape",
		Short: "A community event scraper and importer",
		Long:  `Scrapes community event calendars and imports the events into the site database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	// Parse flags early so the debug flag is visible before the logger exists
	_ = rootCmd.ParseFlags(os.Args[1:])

	if err := config.InitializeViper(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}
	if Debug {
		viper.Set("app.debug", true)
		viper.Set("logging.level", "debug")
	}

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("eventscrape version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(importcmd.Command())
	rootCmd.AddCommand(icsimport.Command())
	rootCmd.AddCommand(checkupdates.Command())
	rootCmd.AddCommand(cmdsources.NewSourcesCommand())
}
