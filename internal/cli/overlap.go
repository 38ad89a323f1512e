package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/witsml-explorer/backend/internal/logindex"
	"github.com/witsml-explorer/backend/internal/models"
	"github.com/witsml-explorer/backend/internal/parser"
)

type overlapColumn struct {
	Mnemonic   string `json:"mnemonic" yaml:"mnemonic"`
	StartIndex string `json:"startIndex" yaml:"startIndex"`
	EndIndex   string `json:"endIndex" yaml:"endIndex"`
}

type overlapResult struct {
	Target     string          `json:"target" yaml:"target"`
	IndexCurve string          `json:"indexCurve" yaml:"indexCurve"`
	Overlap    bool            `json:"overlap" yaml:"overlap"`
	Columns    []overlapColumn `json:"columns" yaml:"columns"`
}

// NewOverlapCommand creates the overlap command.
func NewOverlapCommand() *cobra.Command {
	var indexCurve string
	cmd := &cobra.Command{
		Use:   "overlap <import.csv> <target.yaml>",
		Short: "Check whether importing a file would overwrite existing curve data",
		Long: `Read an import file and report the index range of each of its columns, and
whether any of them overlaps data the target log already holds for the same
mnemonic. The exit code is 1 when the import overlaps.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverlap(cmd, args, indexCurve)
		},
	}
	cmd.Flags().StringVar(&indexCurve, "index-curve", "", "Name of the index column (defaults to the log's index curve, then the first column)")
	return cmd
}

func runOverlap(cmd *cobra.Command, args []string, indexCurve string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening import file: %w", err)
	}
	defer f.Close()

	file, err := parser.ParseImportCSV(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	target, err := loadLogFile(args[1])
	if err != nil {
		return err
	}
	kind, _ := target.Kind()

	switch {
	case indexCurve != "":
		if !file.SetIndexColumn(indexCurve) {
			return fmt.Errorf("%s has no column named %s", args[0], indexCurve)
		}
	case target.IndexCurve != "":
		file.SetIndexColumn(target.IndexCurve)
	}

	query := file.Query(kind)
	result := overlapResult{
		Target:     target.Ref().String(),
		IndexCurve: file.IndexName(),
		Overlap:    logindex.DetectOverlap(query, models.Records(target.Curves, kind)),
		Columns:    []overlapColumn{},
	}
	for _, col := range logindex.ImportRanges(query) {
		result.Columns = append(result.Columns, overlapColumn{
			Mnemonic:   col.Mnemonic,
			StartIndex: col.Range.StartIndex(),
			EndIndex:   col.Range.EndIndex(),
		})
	}

	if err := render(cmd, result, func(w io.Writer) error { return printOverlap(w, result) }); err != nil {
		return err
	}
	if result.Overlap {
		return ErrFindings
	}
	return nil
}

func printOverlap(w io.Writer, result overlapResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "COLUMN\tSTART\tEND\n")
	for _, c := range result.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Mnemonic, c.StartIndex, c.EndIndex)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if result.Overlap {
		_, err := fmt.Fprintf(w, "\nImport overlaps existing data in %s\n", result.Target)
		return err
	}
	_, err := fmt.Fprintf(w, "\nNo overlap with %s\n", result.Target)
	return err
}
