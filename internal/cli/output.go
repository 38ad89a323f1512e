package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/witsml-explorer/backend/internal/catalog"
	"gopkg.in/yaml.v3"
)

// render writes v in the format chosen by --output. Text output is produced by text.
func render(cmd *cobra.Command, v interface{}, text func(w io.Writer) error) error {
	format, _ := cmd.Flags().GetString("output")
	w := cmd.OutOrStdout()
	switch format {
	case "", "text":
		return text(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	}
	return fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
}

// loadLogFile reads one log with its curves from a YAML file.
func loadLogFile(path string) (*catalog.SeedLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	var lg catalog.SeedLog
	if err := yaml.NewDecoder(f).Decode(&lg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if _, err := lg.Kind(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &lg, nil
}
