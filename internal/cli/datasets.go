package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var pdfOutput string

var uploadCmd = &cobra.Command{
	Use:          "upload <file.csv>",
	Short:        "upload an equipment CSV file",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}

		result, err := Run("Uploading...", func() (*UploadResult, error) {
			return client.Upload(args[0])
		})
		if err != nil {
			return err
		}

		fmt.Printf("Uploaded %s as dataset %d (%d rows)\n", result.DatasetName, result.DatasetID, result.Count)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:          "history",
	Short:        "list the most recent datasets",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := sessionClient()
		if err != nil {
			return err
		}

		entries, err := Run("Fetching history...", func() ([]HistoryEntry, error) {
			return client.History()
		})
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No datasets uploaded yet")
			return nil
		}
		return renderHistory(entries)
	},
}

var summaryCmd = &cobra.Command{
	Use:          "summary <dataset-id>",
	Short:        "show aggregate statistics for a dataset",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := parseDatasetArg(args[0])
		if err != nil {
			return err
		}

		client, err := sessionClient()
		if err != nil {
			return err
		}

		summary, err := Run("Fetching summary...", func() (*Summary, error) {
			return client.Summary(datasetID)
		})
		if err != nil {
			return err
		}
		return renderSummary(summary)
	},
}

var dataCmd = &cobra.Command{
	Use:          "data <dataset-id>",
	Short:        "show all equipment rows of a dataset",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := parseDatasetArg(args[0])
		if err != nil {
			return err
		}

		client, err := sessionClient()
		if err != nil {
			return err
		}

		rows, err := Run("Fetching data...", func() ([]Equipment, error) {
			return client.Data(datasetID)
		})
		if err != nil {
			return err
		}

		if len(rows) == 0 {
			fmt.Println("Dataset has no equipment rows")
			return nil
		}
		return renderEquipment(rows)
	},
}

var pdfCmd = &cobra.Command{
	Use:          "pdf <dataset-id>",
	Short:        "download the PDF report for a dataset",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		datasetID, err := parseDatasetArg(args[0])
		if err != nil {
			return err
		}

		client, err := sessionClient()
		if err != nil {
			return err
		}

		pdfBytes, err := Run("Generating report...", func() ([]byte, error) {
			return client.PDF(datasetID)
		})
		if err != nil {
			return err
		}

		output := pdfOutput
		if output == "" {
			output = fmt.Sprintf("equipment_report_%d.pdf", datasetID)
		}
		if err := os.WriteFile(output, pdfBytes, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}

		fmt.Printf("Wrote %s (%d bytes)\n", output, len(pdfBytes))
		return nil
	},
}

func init() {
	pdfCmd.Flags().StringVarP(&pdfOutput, "output", "o", "", "Output file (defaults to equipment_report_<id>.pdf)")
}

func parseDatasetArg(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid dataset id %q", arg)
	}
	return uint(id), nil
}
