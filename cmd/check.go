package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/lorebot/internal/content"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a content document",
	Long:  "Parses the content document, rejects malformed structure, and prints a summary of the tree.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		} else {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path = cfg.ContentPath
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tree, err := content.Load(data)
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		routing := tree.Routing()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: OK\n", path)
		fmt.Fprintf(out, "  navigation: %d\n", len(routing.Navigation))
		fmt.Fprintf(out, "  articles:   %d\n", len(routing.Articles))
		fmt.Fprintf(out, "  quizzes:    %d\n", len(routing.Quizzes))
		return nil
	},
}
