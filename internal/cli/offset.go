package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/witsml-explorer/backend/internal/logindex"
)

type offsetResult struct {
	Offset       string        `json:"offset" yaml:"offset"`
	IndexType    logindex.Kind `json:"indexType" yaml:"indexType"`
	Amount       float64       `json:"amount" yaml:"amount"`
	Milliseconds *int64        `json:"milliseconds,omitempty" yaml:"milliseconds,omitempty"`
}

// NewValidateOffsetCommand creates the validate-offset command.
func NewValidateOffsetCommand() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "validate-offset <offset>",
		Short: "Check an offset for an OffsetLogCurves job",
		Long: `Check an offset before shifting a log.

Depth offsets are signed decimals such as 12.5 or -3. Time offsets are written as
[+-]hh:mm:ss. A zero offset is rejected. Put negative offsets after -- so they are
not read as flags.`,
		Example: `  witsmlctl validate-offset --kind depth -- -20.5
  witsmlctl validate-offset --kind time +01:30:00`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateOffset(cmd, args[0], kind)
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", "depth", "Index kind of the log (depth|time)")
	return cmd
}

func runValidateOffset(cmd *cobra.Command, raw, kindName string) error {
	kind, err := logindex.ParseKind(kindName)
	if err != nil {
		return err
	}
	offset, err := logindex.ValidateOffset(raw, kind)
	if err != nil {
		return err
	}

	result := offsetResult{Offset: raw, IndexType: kind, Amount: offset.Amount()}
	if kind == logindex.KindTime {
		ms := offset.Duration().Milliseconds()
		result.Milliseconds = &ms
	}
	return render(cmd, result, func(w io.Writer) error {
		if kind == logindex.KindTime {
			_, err := fmt.Fprintf(w, "Valid time offset %s (%d ms)\n", raw, *result.Milliseconds)
			return err
		}
		_, err := fmt.Fprintf(w, "Valid depth offset %s\n", raw)
		return err
	})
}
