// Package ticket turns the change_planning phase output into
// structured work items and defines the export contract: exporters
// filter by ticket status before rendering and before computing summary
// counts.
package ticket

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/scout/internal/session"
)

// DocumentVersion is the ticket document schema version.
const DocumentVersion = "1"

// Status is a ticket's workflow state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Ticket is one structured work item derived from the change plan.
type Ticket struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Status       Status   `json:"status"`
	Dependencies []string `json:"dependencies,omitempty"`
	Estimate     string   `json:"estimate,omitempty"`
}

// Document is the structure handed to exporters.
type Document struct {
	Version         string   `json:"version"`
	SessionID       string   `json:"session_id"`
	ProjectName     string   `json:"project_name"`
	TaskDescription string   `json:"task_description"`
	Tickets         []Ticket `json:"tickets"`
}

// Options configures an export.
type Options struct {
	// StatusFilter keeps only tickets with these statuses. Empty keeps
	// everything.
	StatusFilter []Status
}

// Exporter renders a ticket document. Implementations must honor the
// status filter before rendering and before computing summary counts.
type Exporter interface {
	Export(doc Document, opts Options) (string, error)
}

// Summary holds ticket counts for rendered documents.
type Summary struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
}

// Filter returns the tickets matching the status filter, preserving
// order. An empty filter keeps everything.
func Filter(tickets []Ticket, filter []Status) []Ticket {
	if len(filter) == 0 {
		return tickets
	}
	keep := make(map[Status]bool, len(filter))
	for _, s := range filter {
		keep[s] = true
	}
	var out []Ticket
	for _, t := range tickets {
		if keep[t.Status] {
			out = append(out, t)
		}
	}
	return out
}

// Summarize counts tickets per status.
func Summarize(tickets []Ticket) Summary {
	sum := Summary{Total: len(tickets), ByStatus: make(map[Status]int)}
	for _, t := range tickets {
		sum.ByStatus[t.Status]++
	}
	return sum
}

// ErrNoPlan indicates the session has no completed change_planning
// output to derive tickets from.
var ErrNoPlan = errors.New("session has no change planning output")

// FromSession builds the export document from a session's change plan.
func FromSession(sess *session.Session) (Document, error) {
	output, ok := sess.Context[session.PhaseChangePlanning]
	if !ok || output == "" {
		return Document{}, ErrNoPlan
	}
	tickets, err := ParsePlan(output)
	if err != nil {
		return Document{}, err
	}
	return Document{
		Version:         DocumentVersion,
		SessionID:       sess.ID,
		ProjectName:     projectName(sess.CodebasePath),
		TaskDescription: sess.Task,
		Tickets:         tickets,
	}, nil
}

// ParsePlan extracts the ticket array from a change_planning output.
// The plan carries tickets in a fenced json code block; prose around
// the block is ignored.
func ParsePlan(output string) ([]Ticket, error) {
	block, err := fencedJSON(output)
	if err != nil {
		return nil, err
	}

	var tickets []Ticket
	if err := json.Unmarshal([]byte(block), &tickets); err != nil {
		return nil, fmt.Errorf("parsing ticket block: %w", err)
	}
	for i := range tickets {
		if tickets[i].Status == "" {
			tickets[i].Status = StatusOpen
		}
	}
	return tickets, nil
}

func fencedJSON(output string) (string, error) {
	for _, opener := range []string{"```json", "```"} {
		start := strings.Index(output, opener)
		if start < 0 {
			continue
		}
		rest := output[start+len(opener):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		block := strings.TrimSpace(rest[:end])
		if strings.HasPrefix(block, "[") {
			return block, nil
		}
	}
	// A bare JSON array is accepted too.
	trimmed := strings.TrimSpace(output)
	if strings.HasPrefix(trimmed, "[") {
		return trimmed, nil
	}
	return "", errors.New("no ticket json block found in plan output")
}

func projectName(codebasePath string) string {
	trimmed := strings.TrimRight(codebasePath, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if trimmed == "" {
		return "project"
	}
	return trimmed
}
