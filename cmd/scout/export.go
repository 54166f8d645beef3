package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/scout/internal/ticket"
)

var (
	exportFormat string
	exportOutput string
	exportStatus []string
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a completed session's change plan as tickets",
	Long: `Export the tickets produced by a session's change planning phase.

Examples:
  # Print the plan as markdown
  scout export 6f1c2a9e-8b3d-4f7a-9c0e-2d5b8a1f4c7e

  # Write JSON to a file
  scout export --format json --output plan.json 6f1c2a9e-8b3d-4f7a-9c0e-2d5b8a1f4c7e

  # Only open tickets
  scout export --status open 6f1c2a9e-8b3d-4f7a-9c0e-2d5b8a1f4c7e`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "markdown", "output format (json, markdown)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to file instead of stdout")
	exportCmd.Flags().StringSliceVar(&exportStatus, "status", nil, "only include tickets with these statuses")
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.store.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	doc, err := ticket.FromSession(sess)
	if err != nil {
		return err
	}

	exporter, err := ticket.ExporterFor(exportFormat)
	if err != nil {
		return err
	}

	opts := ticket.Options{}
	for _, s := range exportStatus {
		opts.StatusFilter = append(opts.StatusFilter, ticket.Status(s))
	}

	out, err := exporter.Export(doc, opts)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(exportOutput, []byte(out), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", exportOutput, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOutput)
	return nil
}
