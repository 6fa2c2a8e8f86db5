package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/KaramelBytes/edamaster-cli/internal/metrics"
	"github.com/spf13/cobra"
)

var metricsJSON bool

type metricInfo struct {
	Metric  string   `json:"metric"`
	Search  string   `json:"search"`
	Columns []string `json:"columns"`
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List the extracted metrics, their header search terms and output columns",
	RunE: func(cmd *cobra.Command, args []string) error {
		list := make([]metricInfo, 0, len(metrics.Definitions))
		for _, d := range metrics.Definitions {
			mi := metricInfo{Metric: string(d.Metric), Search: d.Key}
			for _, b := range metrics.Blocks {
				mi.Columns = append(mi.Columns, d.Label+" "+b.Tag())
			}
			list = append(list, mi)
		}
		out := cmd.OutOrStdout()
		if metricsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "METRIC\tSEARCH\tCOLUMNS")
		for _, mi := range list {
			fmt.Fprintf(tw, "%s\t%q\t%s, %s, %s\n", mi.Metric, mi.Search, mi.Columns[0], mi.Columns[1], mi.Columns[2])
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "print as JSON")
}
