package cmd

import (
	"github.com/abhisek/lorebot/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lorebot",
	Short: "Conversational content and quiz delivery",
	Long:  "Lorebot serves a navigable tree of articles and quizzes through a conversational interface, with admin-driven authoring and persistent quiz scores.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (overrides lorebot.yaml discovery)")
	rootCmd.PersistentFlags().String("content", "", "Path to the content document (overrides config)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration with flags taking priority over the
// config file and environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("content"); p != "" {
		cfg.ContentPath = p
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	return cfg, nil
}
