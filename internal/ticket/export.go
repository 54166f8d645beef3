package ticket

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// JSONExporter renders the document as indented JSON with a trailing
// summary block.
type JSONExporter struct{}

type jsonDocument struct {
	Document
	Summary Summary `json:"summary"`
}

// Export implements Exporter.
func (JSONExporter) Export(doc Document, opts Options) (string, error) {
	filtered := Filter(doc.Tickets, opts.StatusFilter)
	out := jsonDocument{Document: doc, Summary: Summarize(filtered)}
	out.Tickets = filtered
	if out.Tickets == nil {
		out.Tickets = []Ticket{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding ticket document: %w", err)
	}
	return string(data) + "\n", nil
}

// MarkdownExporter renders the document as a human-readable plan.
type MarkdownExporter struct{}

// Export implements Exporter.
func (MarkdownExporter) Export(doc Document, opts Options) (string, error) {
	filtered := Filter(doc.Tickets, opts.StatusFilter)
	sum := Summarize(filtered)

	var b strings.Builder
	fmt.Fprintf(&b, "# Change Plan: %s\n\n", doc.ProjectName)
	fmt.Fprintf(&b, "**Task:** %s\n\n", doc.TaskDescription)
	fmt.Fprintf(&b, "**Session:** %s\n\n", doc.SessionID)

	fmt.Fprintf(&b, "%d ticket(s)", sum.Total)
	if sum.Total > 0 {
		b.WriteString(" (")
		b.WriteString(statusCounts(sum))
		b.WriteString(")")
	}
	b.WriteString("\n")

	for _, t := range filtered {
		fmt.Fprintf(&b, "\n## %s: %s\n\n", t.ID, t.Title)
		fmt.Fprintf(&b, "**Status:** %s\n", t.Status)
		if t.Estimate != "" {
			fmt.Fprintf(&b, "**Estimate:** %s\n", t.Estimate)
		}
		if len(t.Dependencies) > 0 {
			fmt.Fprintf(&b, "**Depends on:** %s\n", strings.Join(t.Dependencies, ", "))
		}
		if t.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", t.Description)
		}
	}
	return b.String(), nil
}

func statusCounts(sum Summary) string {
	statuses := make([]Status, 0, len(sum.ByStatus))
	for s := range sum.ByStatus {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i] < statuses[j] })

	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, fmt.Sprintf("%d %s", sum.ByStatus[s], s))
	}
	return strings.Join(parts, ", ")
}

// ExporterFor returns the exporter for a format name.
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "json":
		return JSONExporter{}, nil
	case "markdown", "md":
		return MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q (expected json or markdown)", format)
	}
}
