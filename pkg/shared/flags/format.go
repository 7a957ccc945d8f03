package flags

import (
	"github.com/spf13/cobra"

	"github.com/Paintersrp/linkrank/internal/report"
)

func AddFormat(cmd *cobra.Command) {
	cmd.Flags().
		StringP("format", "f", string(report.FormatText), "Output format: text, markdown or json.")
}

func HandleFormat(cmd *cobra.Command) (report.Format, error) {
	value, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", err
	}
	return report.ParseFormat(value)
}
