package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/praetorian-inc/carve/pkg/rangespec"
	"github.com/praetorian-inc/carve/pkg/types"
)

var rangesFormat string

var rangesCmd = &cobra.Command{
	Use:   "ranges LIST",
	Short: "Show how a position list is parsed",
	Long:  "Parse a position list and print each range with its zero-based bounds, in the order it will be applied",
	Args:  cobra.ExactArgs(1),
	RunE:  runRanges,
}

func init() {
	rangesCmd.Flags().StringVar(&rangesFormat, "format", "table", "Output format: table, json, yaml")
}

// rangeRow describes one parsed term.
type rangeRow struct {
	Term  string `json:"term" yaml:"term"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Width int    `json:"width" yaml:"width"`
}

func runRanges(cmd *cobra.Command, args []string) error {
	ranges, err := rangespec.Parse(args[0])
	if err != nil {
		return err
	}

	rows := make([]rangeRow, len(ranges))
	for i, r := range ranges {
		rows[i] = rangeRow{Term: r.String(), Start: r.Start, End: r.End, Width: r.Len()}
	}

	switch rangesFormat {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	case "yaml":
		encoder := yaml.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent(2)
		if err := encoder.Encode(rows); err != nil {
			return err
		}
		return encoder.Close()
	case "table":
		return outputRangesTable(cmd, ranges, rows)
	default:
		return fmt.Errorf("unknown output format: %s", rangesFormat)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func outputRangesTable(cmd *cobra.Command, ranges types.RangeList, rows []rangeRow) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Term\tStart\tEnd\tWidth\n")
	fmt.Fprintf(w, "----\t-----\t---\t-----\n")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", r.Term, r.Start, r.End, r.Width)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nCanonical: %s (%d positions)\n", ranges.String(), ranges.Span())
	return nil
}
