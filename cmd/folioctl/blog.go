package main

import (
	"errors"

	"github.com/spf13/cobra"

	"folio/api/internal/session"
)

var blogCmd = &cobra.Command{
	Use:   "blog",
	Short: "Blog metadata operations",
}

var blogNormalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Fetch metadata for every manual post and rebuild the normalized list",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _ := newSession()
		if err := ensureLoaded(cmd, sess); err != nil {
			return err
		}
		if err := sess.NormalizeBlog(cmd.Context()); err != nil {
			if errors.Is(err, session.ErrNoPosts) {
				cmd.Println("Nothing to normalize: no manual posts with URLs.")
				return nil
			}
			return err
		}
		count := len(sess.Document().Blog.Normalized)
		cmd.Printf("Normalized %d post(s).\n", count)
		return nil
	},
}

var blogPreviewCmd = &cobra.Command{
	Use:   "preview <url>",
	Short: "Fetch metadata for a single URL without touching the draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client := newSession()
		preview, err := client.Preview(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Title:    %s\n", preview.Title)
		cmd.Printf("Summary:  %s\n", preview.Summary)
		cmd.Printf("Image:    %s\n", preview.Image)
		cmd.Printf("Date:     %s\n", preview.Date)
		cmd.Printf("Read:     %d min\n", preview.ReadMinutes)
		if len(preview.Tags) > 0 {
			cmd.Printf("Tags:     %v\n", preview.Tags)
		}
		return nil
	},
}

var blogCacheClearCmd = &cobra.Command{
	Use:   "cache-clear",
	Short: "Drop every cached preview on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client := newSession()
		cleared, err := client.ClearCache(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Printf("Cleared %d cached preview(s).\n", cleared)
		return nil
	},
}

func init() {
	blogCmd.AddCommand(blogNormalizeCmd)
	blogCmd.AddCommand(blogPreviewCmd)
	blogCmd.AddCommand(blogCacheClearCmd)
	rootCmd.AddCommand(blogCmd)
}
