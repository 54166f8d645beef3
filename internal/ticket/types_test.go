package ticket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/scout/internal/session"
)

const planOutput = "Here is the plan.\n\n```json\n" +
	`[
  {"id": "T1", "title": "Add config field", "description": "Wire the new flag.", "status": "open", "estimate": "small"},
  {"id": "T2", "title": "Update handler", "description": "Use the flag.", "dependencies": ["T1"]}
]` + "\n```\n\nFollow the order above.\n"

func TestParsePlan(t *testing.T) {
	tickets, err := ParsePlan(planOutput)
	require.NoError(t, err)
	require.Len(t, tickets, 2)

	assert.Equal(t, "T1", tickets[0].ID)
	assert.Equal(t, StatusOpen, tickets[0].Status)
	assert.Equal(t, "small", tickets[0].Estimate)

	// Missing status defaults to open.
	assert.Equal(t, StatusOpen, tickets[1].Status)
	assert.Equal(t, []string{"T1"}, tickets[1].Dependencies)
}

func TestParsePlanBareArray(t *testing.T) {
	tickets, err := ParsePlan(`[{"id": "T1", "title": "Only ticket"}]`)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "Only ticket", tickets[0].Title)
}

func TestParsePlanUnfencedBlock(t *testing.T) {
	out := "```\n[{\"id\": \"T1\", \"title\": \"Plain fence\"}]\n```"
	tickets, err := ParsePlan(out)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
}

func TestParsePlanNoBlock(t *testing.T) {
	_, err := ParsePlan("The plan is to refactor everything, no tickets today.")
	require.Error(t, err)
}

func TestParsePlanMalformedJSON(t *testing.T) {
	_, err := ParsePlan("```json\n[{\"id\": }]\n```")
	require.Error(t, err)
}

func TestFilter(t *testing.T) {
	tickets := []Ticket{
		{ID: "T1", Status: StatusOpen},
		{ID: "T2", Status: StatusDone},
		{ID: "T3", Status: StatusOpen},
	}

	assert.Len(t, Filter(tickets, nil), 3)

	open := Filter(tickets, []Status{StatusOpen})
	require.Len(t, open, 2)
	assert.Equal(t, "T1", open[0].ID)
	assert.Equal(t, "T3", open[1].ID)

	assert.Empty(t, Filter(tickets, []Status{StatusInProgress}))
}

func TestSummarize(t *testing.T) {
	sum := Summarize([]Ticket{
		{Status: StatusOpen},
		{Status: StatusOpen},
		{Status: StatusDone},
	})
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 2, sum.ByStatus[StatusOpen])
	assert.Equal(t, 1, sum.ByStatus[StatusDone])
}

func TestFromSession(t *testing.T) {
	sess := &session.Session{
		ID:           "abc-123",
		CodebasePath: "/home/dev/projects/payments/",
		Task:         "Add webhook retries",
		Context: map[session.Phase]string{
			session.PhaseChangePlanning: planOutput,
		},
	}

	doc, err := FromSession(sess)
	require.NoError(t, err)
	assert.Equal(t, DocumentVersion, doc.Version)
	assert.Equal(t, "abc-123", doc.SessionID)
	assert.Equal(t, "payments", doc.ProjectName)
	assert.Equal(t, "Add webhook retries", doc.TaskDescription)
	assert.Len(t, doc.Tickets, 2)
}

func TestFromSessionNoPlan(t *testing.T) {
	sess := &session.Session{ID: "abc", Context: map[session.Phase]string{}}
	_, err := FromSession(sess)
	require.ErrorIs(t, err, ErrNoPlan)
}
