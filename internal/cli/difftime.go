package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/witsml-explorer/backend/internal/logindex"
)

type diffTimeResult struct {
	First  []logindex.Segment `json:"first" yaml:"first"`
	Second []logindex.Segment `json:"second" yaml:"second"`
}

// NewDiffTimeCommand creates the diff-time command.
func NewDiffTimeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff-time <first> <second>",
		Short: "Highlight the parts of two date times that differ",
		Long: `Split two date time strings into date, time, fraction and zone parts and mark
the parts that differ with brackets.`,
		Example: `  witsmlctl diff-time 2024-01-16T09:00:00Z 2024-01-17T09:00:00Z`,
		Args:    cobra.ExactArgs(2),
		RunE:    runDiffTime,
	}
}

func runDiffTime(cmd *cobra.Command, args []string) error {
	first, second := logindex.DiffSegments(args[0], args[1])
	result := diffTimeResult{First: first, Second: second}
	return render(cmd, result, func(w io.Writer) error {
		if _, err := fmt.Fprintln(w, highlight(first)); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, highlight(second))
		return err
	})
}

func highlight(segments []logindex.Segment) string {
	var b strings.Builder
	for _, s := range segments {
		if s.Differs {
			b.WriteString("[" + s.Text + "]")
			continue
		}
		b.WriteString(s.Text)
	}
	return b.String()
}
