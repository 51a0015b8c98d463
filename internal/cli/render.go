package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

const maxBarWidth = 40

var heading = color.New(color.FgCyan, color.Bold)

func printHeading(title string) {
	heading.Println(title)
}

func renderTable(headers []string, data [][]string) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header(headers)
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func renderHistory(entries []HistoryEntry) error {
	printHeading("Upload History")
	var data [][]string
	for _, entry := range entries {
		data = append(data, []string{
			strconv.FormatUint(uint64(entry.ID), 10),
			entry.Name,
			entry.UploadedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.Itoa(entry.EquipmentCount),
		})
	}
	return renderTable([]string{"ID", "Name", "Uploaded At", "Rows"}, data)
}

func renderEquipment(rows []Equipment) error {
	var data [][]string
	for _, row := range rows {
		data = append(data, []string{
			strconv.FormatUint(uint64(row.ID), 10),
			row.Name,
			row.Type,
			fmt.Sprintf("%.2f", row.Flowrate),
			fmt.Sprintf("%.2f", row.Pressure),
			fmt.Sprintf("%.2f", row.Temperature),
		})
	}
	return renderTable([]string{"ID", "Name", "Type", "Flowrate", "Pressure", "Temperature"}, data)
}

func renderSummary(summary *Summary) error {
	printHeading(fmt.Sprintf("Summary for %s (dataset %d)", summary.DatasetName, summary.DatasetID))

	data := [][]string{
		{"Total Equipment Count", strconv.Itoa(summary.Summary.TotalCount)},
		{"Average Flowrate", fmt.Sprintf("%.2f", summary.Summary.Averages.Flowrate)},
		{"Average Pressure", fmt.Sprintf("%.2f", summary.Summary.Averages.Pressure)},
		{"Average Temperature", fmt.Sprintf("%.2f", summary.Summary.Averages.Temperature)},
	}
	if err := renderTable([]string{"Metric", "Value"}, data); err != nil {
		return err
	}

	fmt.Println()
	printHeading("Type Distribution")
	renderDistributionChart(summary.Summary.TypeDistribution)
	return nil
}

// renderDistributionChart draws a horizontal bar per equipment type, the
// terminal stand-in for the desktop charts. JSON objects do not preserve
// key order, so bars are sorted by count descending, then name.
func renderDistributionChart(distribution map[string]int) {
	types := make([]string, 0, len(distribution))
	maxCount := 0
	maxLabel := 0
	for name, count := range distribution {
		types = append(types, name)
		if count > maxCount {
			maxCount = count
		}
		if len(name) > maxLabel {
			maxLabel = len(name)
		}
	}
	sort.Slice(types, func(i, j int) bool {
		if distribution[types[i]] != distribution[types[j]] {
			return distribution[types[i]] > distribution[types[j]]
		}
		return types[i] < types[j]
	})

	for _, name := range types {
		count := distribution[name]
		width := 1
		if maxCount > 0 {
			width = count * maxBarWidth / maxCount
			if width < 1 {
				width = 1
			}
		}
		fmt.Printf("%-*s %s %d\n", maxLabel, name, strings.Repeat("█", width), count)
	}
}
