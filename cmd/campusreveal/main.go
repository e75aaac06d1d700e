package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const banner = `CAMPUS REVEAL
"Discover and Review Your Dream Colleges Anonymously"

Write a review:   campusreveal colleges --search <name>
                  campusreveal review <college-id> --rating 1-5 --text "..."
`

var (
	configPath string
	apiURL     string
)

var rootCmd = &cobra.Command{
	Use:   "campusreveal",
	Short: "Browse, review and request colleges",
	Long: `Campus Reveal lists colleges, lets anyone post anonymous star-rated
reviews of them, and forwards requests for missing colleges to an
administrator by email.

The serve and seed commands run against the database; every other command
talks to a running server through --api.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), banner)
	},
}

func init() {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "./config/config.yaml"
	}
	defaultAPI := os.Getenv("CAMPUS_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:5000"
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "Base URL of a running Campus Reveal server")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
