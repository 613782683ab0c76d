package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"folio/api/internal/remote"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the local draft with the published document",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _ := newSession()
		if err := sess.LoadFromRemote(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("Pulled published document into %s\n", ctlCfg.DraftPath)
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the local draft to the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _ := newSession()
		ok, err := sess.LoadLocalDraft()
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("no local draft to publish; run pull or edit first")
		}
		if err := sess.Publish(cmd.Context()); err != nil {
			var rejection *remote.RejectionError
			if errors.As(err, &rejection) {
				return fmt.Errorf("server rejected publish: %s", rejection.Detail)
			}
			return err
		}
		cmd.Println("Published.")
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the working copy as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _ := newSession()
		if err := ensureLoaded(cmd, sess); err != nil {
			return err
		}
		raw, err := sess.Snapshot().Encode()
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, string(raw))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Write the working copy to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _ := newSession()
		if err := ensureLoaded(cmd, sess); err != nil {
			return err
		}
		raw, err := sess.Snapshot().Encode()
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[0], raw, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		cmd.Printf("Exported working copy to %s\n", args[0])
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file.json>",
	Short: "Replace the local draft with a full document from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		sess, _ := newSession()
		if err := sess.ImportSnapshot(raw); err != nil {
			return err
		}
		cmd.Printf("Draft replaced from %s. Review with show, then publish.\n", args[0])
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [hash]",
	Short: "List publish revisions, or show the document at one revision",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client := newSession()
		if len(args) == 1 {
			data, rev, err := client.Revision(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("# %s  %s  %s\n", rev.Hash, rev.When.Format("2006-01-02 15:04"), rev.Author)
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		}
		revisions, err := client.Revisions(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(revisions) == 0 {
			cmd.Println("No revisions yet.")
			return nil
		}
		for _, rev := range revisions {
			cmd.Printf("%s  %s  %-12s %s\n", shortHash(rev.Hash), rev.When.Format("2006-01-02 15:04"), rev.Author, rev.Message)
		}
		return nil
	},
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of revisions to list")
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(historyCmd)
}
