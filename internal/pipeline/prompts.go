package pipeline

import (
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/scout/internal/repo"
	"github.com/fyrsmithlabs/scout/internal/session"
)

// clarifyMarker prefixes lines early phases use to surface questions
// that need a human answer.
const clarifyMarker = "CLARIFY:"

// phaseInstructions holds the analysis brief for each phase.
var phaseInstructions = map[session.Phase]string{
	session.PhaseDomainResearch: `Research the problem domain of this codebase.
Identify the business domain, the core entities and their relationships, and
the domain vocabulary the code uses. List anything about the task that is
ambiguous as questions, one per line, each starting with "CLARIFY:".`,

	session.PhaseTechStack: `Identify the technology stack: languages,
frameworks, libraries, build tooling, storage and external services.
Note versions where they are visible. If a stack choice makes the task
ambiguous, add a line starting with "CLARIFY:".`,

	session.PhaseArchitecture: `Describe the architecture: the major
components, how they communicate, the layering, and the entry points.
Call out patterns the codebase commits to (e.g. hexagonal, MVC, pipes).`,

	session.PhaseConventions: `Document the coding conventions: naming,
file and package layout, error handling style, test structure, and any
lint or formatting rules the project enforces.`,

	session.PhaseFeatureLocation: `Locate where the requested change
belongs. List the files, modules and functions involved, and explain why
each is relevant to the task.`,

	session.PhaseImpactAnalysis: `Analyze the impact of the change:
which components are affected directly and transitively, what could
break, what needs new tests, and any migration or compatibility
concerns.`,

	session.PhaseChangePlanning: `Plan the change as discrete work items.
Return a fenced json code block containing an array of tickets, each
with "id", "title", "description", "status" (always "open"),
"dependencies" (array of ids) and "estimate" (small|medium|large).
After the block, summarize the plan in a short paragraph.`,
}

// clarifyingPhases are the early phases whose output is scanned for
// clarifying questions.
var clarifyingPhases = map[session.Phase]bool{
	session.PhaseDomainResearch: true,
	session.PhaseTechStack:      true,
}

// buildPrompt assembles the prompt for one phase from the task, the
// codebase facts and every earlier completed phase's output, in phase
// order.
func buildPrompt(sess *session.Session, phase session.Phase, facts *repo.Facts) string {
	var b strings.Builder

	b.WriteString("You are analyzing a codebase to prepare a change.\n\n")
	fmt.Fprintf(&b, "Task: %s\n", sess.Task)
	fmt.Fprintf(&b, "Codebase path: %s\n", sess.CodebasePath)

	if facts != nil {
		b.WriteString("\nCodebase facts:\n")
		b.WriteString(facts.Summary())
	}

	prior := false
	for _, earlier := range session.PhaseOrder() {
		if earlier == phase {
			break
		}
		output, ok := sess.Context[earlier]
		if !ok || output == "" {
			continue
		}
		if !prior {
			b.WriteString("\nFindings from earlier phases:\n")
			prior = true
		}
		fmt.Fprintf(&b, "\n## %s\n%s\n", earlier, output)
	}

	if len(sess.ClarifyingQuestions) > 0 {
		b.WriteString("\nOpen questions already collected:\n")
		for _, q := range sess.ClarifyingQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
	}

	fmt.Fprintf(&b, "\nCurrent phase: %s\n\n%s\n", phase, phaseInstructions[phase])
	return b.String()
}

// extractClarifyingQuestions pulls CLARIFY: lines out of a phase
// output, in order.
func extractClarifyingQuestions(output string) []string {
	var questions []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, clarifyMarker) {
			continue
		}
		q := strings.TrimSpace(strings.TrimPrefix(line, clarifyMarker))
		if q != "" {
			questions = append(questions, q)
		}
	}
	return questions
}

// buildSummary composes the session summary once every phase has
// completed: the task plus the first line of each phase's findings.
func buildSummary(sess *session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis of %s for: %s\n", sess.CodebasePath, sess.Task)
	for _, phase := range session.PhaseOrder() {
		output := sess.Context[phase]
		if output == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", phase, firstLine(output))
	}
	if n := len(sess.ClarifyingQuestions); n > 0 {
		fmt.Fprintf(&b, "Open questions: %d\n", n)
	}
	return b.String()
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "# "))
		if line != "" {
			return line
		}
	}
	return ""
}
