package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/scout/internal/session"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Resume an interrupted or failed session",
	Long: `Resume a session from its last saved state. Completed phases are
skipped; the first pending or failed phase runs next.

Examples:
  scout resume 6f1c2a9e-8b3d-4f7a-9c0e-2d5b8a1f4c7e`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func runResume(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.store.Load(args[0])
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if sess.State == session.StateCompleted {
		fmt.Printf("Session %s is already completed.\n", sess.ID)
		return nil
	}

	fmt.Printf("Resuming session %s (%s)\n", sess.ID, sess.Task)
	return executeSession(a, sess)
}
