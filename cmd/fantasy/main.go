// Package main is the fantasy command: play an adventure in the terminal, host it
// over telnet, manage the schema and inspect the content.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "fantasy",
	Short:         "Turn-based fantasy adventure",
	Long:          `fantasy plays a single-hero adventure: create a hero, walk the story, fight what you meet and face the bosses.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	rootCmd.PersistentFlags().String("store", "", "storage driver: sqlite, postgres or memory")
	rootCmd.PersistentFlags().Uint64("seed", 0, "random seed for a reproducible run (0 = random)")
	rootCmd.PersistentFlags().String("content", "", "directory holding classes.yaml, enemies.yaml and story.yaml")
	rootCmd.PersistentFlags().Bool("color", false, "color narration with ANSI escapes")

	rootCmd.AddCommand(playCmd, serveCmd, migrateCmd, classesCmd)
}
