// Package cli implements equipctl, the terminal client for the equipstat
// server. It covers the same operations as the desktop application: login,
// CSV upload, history, summaries with a type-distribution chart, raw data
// and PDF download.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "equipctl",
	Short: "Equipment analytics CLI",
	Long: `A command-line client for the equipstat server. Upload equipment CSV
files, browse the upload history, inspect summaries and download PDF
reports.`,
	Example: `  # Authenticate against a server
  $ equipctl login -s http://localhost:8080 -u admin

  # Upload a CSV file
  $ equipctl upload equipment.csv

  # Show the five most recent datasets
  $ equipctl history

  # Summary with a type-distribution chart
  $ equipctl summary 3

  # Download the PDF report
  $ equipctl pdf 3 -o report.pdf`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(dataCmd)
	rootCmd.AddCommand(pdfCmd)
}

// sessionClient builds an API client from the saved session.
func sessionClient() (*APIClient, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewAPIClient(cfg.Server, cfg.Token)
}
