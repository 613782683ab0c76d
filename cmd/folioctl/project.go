package main

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"folio/api/internal/editor"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project list operations on the local draft",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the projects in the working copy",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _ := newSession()
		if err := ensureLoaded(cmd, sess); err != nil {
			return err
		}
		projects := sess.Document().Projects
		if len(projects) == 0 {
			cmd.Println("No projects.")
			return nil
		}
		for i, p := range projects {
			marker := " "
			if p.Featured {
				marker = "*"
			}
			cmd.Printf("%3d %s %-24s %s\n", i, marker, p.ID, p.Title)
		}
		return nil
	},
}

var projectDuplicateCmd = &cobra.Command{
	Use:   "duplicate <index>",
	Short: "Append a copy of the project at the given index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.New("index must be an integer")
		}
		sess, _ := newSession()
		if err := ensureLoaded(cmd, sess); err != nil {
			return err
		}
		ed := editor.New(sess)
		if err := ed.Duplicate(index); err != nil {
			return err
		}
		projects := sess.Document().Projects
		copied := projects[len(projects)-1]
		cmd.Printf("Duplicated as %q (%s).\n", copied.Title, copied.ID)
		return nil
	},
}

var deleteYes bool

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete the project at the given index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.New("index must be an integer")
		}
		sess, _ := newSession()
		if err := ensureLoaded(cmd, sess); err != nil {
			return err
		}
		ed := editor.New(sess)
		if err := ed.Delete(index, deleteYes); err != nil {
			if errors.Is(err, editor.ErrConfirmRequired) {
				return errors.New("deletion is permanent; re-run with --yes to confirm")
			}
			return err
		}
		cmd.Println("Deleted.")
		return nil
	},
}

func init() {
	projectDeleteCmd.Flags().BoolVar(&deleteYes, "yes", false, "confirm the deletion")
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectDuplicateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	rootCmd.AddCommand(projectCmd)
}
