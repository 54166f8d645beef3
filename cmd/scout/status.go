package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/scout/internal/session"
)

var statusPhase string

var statusCmd = &cobra.Command{
	Use:   "status [session-id]",
	Short: "Show sessions or a single session's phase progress",
	Long: `Without arguments, list all known sessions newest first. With a
session id, show the per-phase status of that session.

Examples:
  scout status
  scout status 6f1c2a9e-8b3d-4f7a-9c0e-2d5b8a1f4c7e

  # Print a completed phase's full output
  scout status --phase architecture 6f1c2a9e-8b3d-4f7a-9c0e-2d5b8a1f4c7e`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusPhase, "phase", "", "print this phase's saved output instead of the table")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		if statusPhase != "" {
			return fmt.Errorf("--phase requires a session id")
		}
		return listSessions(a)
	}
	if statusPhase != "" {
		return showPhaseOutput(a, args[0], session.Phase(statusPhase))
	}
	return showSession(a, args[0])
}

func showPhaseOutput(a *app, id string, phase session.Phase) error {
	sess, err := a.store.Load(id)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	output, err := a.store.ReadPhaseOutput(sess, phase)
	if err != nil {
		return err
	}
	fmt.Print(output)
	return nil
}

func listSessions(a *app) error {
	sessions, err := a.store.List()
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	for _, sess := range sessions {
		fmt.Printf("%s  %-9s  %s  %s\n",
			sess.ID, sess.State, sess.UpdatedAt.Format("2006-01-02 15:04"), sess.Task)
	}
	return nil
}

func showSession(a *app, id string) error {
	sess, err := a.store.Load(id)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	fmt.Printf("Session:  %s\n", sess.ID)
	fmt.Printf("Task:     %s\n", sess.Task)
	fmt.Printf("Codebase: %s\n", sess.CodebasePath)
	fmt.Printf("Provider: %s\n", sess.Config.Provider)
	fmt.Printf("State:    %s\n", sess.State)
	fmt.Printf("Updated:  %s\n\n", sess.UpdatedAt.Format("2006-01-02 15:04:05 MST"))

	for _, phase := range session.PhaseOrder() {
		rec := sess.Record(phase)
		line := fmt.Sprintf("  %-17s %s", phase, rec.Status)
		if rec.Status == session.StatusCompleted && rec.DurationMS > 0 {
			line += fmt.Sprintf(" (%.1fs)", float64(rec.DurationMS)/1000)
		}
		if rec.Error != nil {
			line += fmt.Sprintf(" [%s] %s", rec.Error.Kind, rec.Error.Message)
		}
		fmt.Println(line)
	}

	if len(sess.ClarifyingQuestions) > 0 {
		fmt.Println("\nClarifying questions:")
		for _, q := range sess.ClarifyingQuestions {
			fmt.Printf("  - %s\n", q)
		}
	}
	if sess.Summary != "" {
		fmt.Printf("\n%s\n", sess.Summary)
	}
	return nil
}
