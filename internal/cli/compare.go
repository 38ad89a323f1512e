package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/witsml-explorer/backend/internal/logindex"
	"github.com/witsml-explorer/backend/internal/models"
)

type compareOptions struct {
	NormalizeTime bool
}

// compareResult is the machine readable output of compare.
type compareResult struct {
	Source     string                    `json:"source" yaml:"source"`
	Target     string                    `json:"target" yaml:"target"`
	IndexType  logindex.Kind             `json:"indexType" yaml:"indexType"`
	Mismatches []logindex.MismatchRecord `json:"mismatches" yaml:"mismatches"`
}

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	opts := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare <source.yaml> <target.yaml>",
		Short: "List curves whose index range or unit differ between two logs",
		Long: `Compare the curve metadata of two logs.

A curve is listed when it exists in only one of the logs, or when its start index,
end index or unit differ. Curves present in both with equal metadata are omitted.
The exit code is 1 when any curve is listed.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.NormalizeTime, "normalize-time", false, "Compare date time indexes by instant instead of by text")
	return cmd
}

func runCompare(cmd *cobra.Command, args []string, opts *compareOptions) error {
	source, err := loadLogFile(args[0])
	if err != nil {
		return err
	}
	target, err := loadLogFile(args[1])
	if err != nil {
		return err
	}
	sourceKind, _ := source.Kind()
	targetKind, _ := target.Kind()
	if sourceKind != targetKind {
		return &logindex.KindMismatchError{Left: sourceKind, Right: targetKind}
	}

	detector := logindex.Detector{NormalizeTime: opts.NormalizeTime}
	mismatches, err := detector.Detect(models.Records(source.Curves, sourceKind), models.Records(target.Curves, targetKind))
	if err != nil {
		return err
	}

	result := compareResult{
		Source:     source.Ref().String(),
		Target:     target.Ref().String(),
		IndexType:  sourceKind,
		Mismatches: mismatches,
	}
	if err := render(cmd, result, func(w io.Writer) error { return printMismatches(w, result) }); err != nil {
		return err
	}
	if len(mismatches) > 0 {
		return ErrFindings
	}
	return nil
}

func printMismatches(w io.Writer, result compareResult) error {
	if len(result.Mismatches) == 0 {
		_, err := fmt.Fprintf(w, "No index mismatches between %s and %s\n", result.Source, result.Target)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MNEMONIC\tSOURCE START\tTARGET START\tSOURCE END\tTARGET END\tSOURCE UNIT\tTARGET UNIT")
	for _, m := range result.Mismatches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Mnemonic,
			flag(m.SourceStart, m.StartDiffers), flag(m.TargetStart, m.StartDiffers),
			flag(m.SourceEnd, m.EndDiffers), flag(m.TargetEnd, m.EndDiffers),
			flag(m.SourceUnit, m.UnitDiffers), flag(m.TargetUnit, m.UnitDiffers))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d curve(s) differ\n", len(result.Mismatches))
	return err
}

// flag marks a differing cell with an asterisk.
func flag(s string, differs bool) string {
	if differs {
		return s + " *"
	}
	return s
}
