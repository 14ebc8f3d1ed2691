package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/fantasy/internal/game/creation"
)

var classesCmd = &cobra.Command{
	Use:   "classes",
	Short: "List the playable classes, their abilities and the bosses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		cat, err := a.catalog()
		if err != nil {
			return fmt.Errorf("loading content: %w", err)
		}
		for _, line := range creation.ClassListing(cat.Classes()) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Bosses, in order of appearance:")
		for i, name := range cat.BossOrder() {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, name)
		}
		return nil
	},
}
