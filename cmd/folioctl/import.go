package main

import (
	"github.com/spf13/cobra"

	"folio/api/internal/editor"
	"folio/api/internal/importer"
)

var importApply bool

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a project file into the draft",
	Long: `Import sends a project JSON file to the server for parsing and shows a
summary of the candidate. With --apply the candidate is added to the top of
the project list in the local draft.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, client := newSession()
		if err := ensureLoaded(cmd, sess); err != nil {
			return err
		}
		ed := editor.New(sess)
		im := importer.New(client, ed)

		summary, err := im.StageFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Title:      %s\n", summary.Title)
		cmd.Printf("Category:   %s\n", summary.Category)
		cmd.Printf("Status:     %s\n", summary.Status)
		cmd.Printf("Summary:    %s\n", summary.Summary)
		cmd.Printf("Paragraphs: %d, tech items: %d, media tabs: %d\n",
			summary.Paragraphs, summary.TechItems, summary.MediaTabs)

		if !importApply {
			im.Cancel()
			cmd.Println("Dry run: re-run with --apply to add this project to the draft.")
			return nil
		}
		if err := im.Confirm(); err != nil {
			return err
		}
		if err := ed.Save(); err != nil {
			return err
		}
		cmd.Println("Added to the top of the project list.")
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&importApply, "apply", false, "add the imported project to the draft")
	rootCmd.AddCommand(importCmd)
}
