package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the mailpane application
var rootCmd = &cobra.Command{
	Use:   "mailpane",
	Short: "Gmail client with AI-assisted replies from the terminal",
	Long: `mailpane is a Gmail client for the terminal. It signs in with your
Google account, lists and sends mail, and drafts replies with the
Gemini generative API using your saved resume profile for context.

Credentials are read from the environment or a .env file:
  GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_API_KEY
  GEMINI_API_KEY (for AI-drafted replies)`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mailpane version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "",
		"serve Prometheus metrics on this address (requires INSTRUMENTATION_ENABLED=true)")

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newStarCmd())
	rootCmd.AddCommand(newUnstarCmd())
	rootCmd.AddCommand(newTrashCmd())
	rootCmd.AddCommand(newRmCmd())
	rootCmd.AddCommand(newReplyCmd())
	rootCmd.AddCommand(newResumeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
