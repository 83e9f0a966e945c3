package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tesh254/chatmd/internal/conversation"
	"github.com/tesh254/chatmd/internal/export"
	"github.com/tesh254/chatmd/internal/scraper"
	"github.com/tesh254/chatmd/internal/storage"
)

var convertCmd = &cobra.Command{
	Use:   "convert [source]",
	Short: "Converts a chat page (file, URL or - for stdin) to Markdown",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		source := args[0]
		platformName, _ := cmd.Flags().GetString("platform")
		output, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		archive, _ := cmd.Flags().GetBool("archive")
		noNumbering, _ := cmd.Flags().GetBool("no-numbering")
		title, _ := cmd.Flags().GetString("title")
		verbose, _ := cmd.Flags().GetBool("verbose")

		cfg, log := loadConfig()
		if noNumbering {
			cfg.Numbering = false
		}
		if format != export.FormatMarkdown && format != export.FormatJSON {
			log.Fatalf("Unsupported format %q: must be md or json", format)
		}

		var st *storage.Storage
		if archive {
			st = openStorage(cfg, log)
			defer st.Close()
		}
		chatAPI := newAPI(cfg, st, verbose, log)
		ctx := cmd.Context()

		s, err := chatAPI.Load(ctx, source)
		if err != nil {
			log.Fatalf("Failed to load %s: %v", source, err)
		}
		s.DisplayLoadBanner()
		s.DisplayMetadata()

		stop := s.StartSpinner("Extracting conversation")
		conv, err := chatAPI.Convert(ctx, s, conversation.Options{
			Source:   source,
			Platform: platformName,
			Title:    title,
		})
		stop()
		if err != nil {
			s.DisplayError(err)
			if errors.Is(err, conversation.ErrNoContent) {
				log.Fatalf("No conversation content found in %s", source)
			}
			log.Fatalf("Failed to convert %s: %v", source, err)
		}

		rows := make([]scraper.MessageSummary, len(conv.Messages))
		for i, m := range conv.Messages {
			rows[i] = scraper.MessageSummary{Role: m.Role, Items: len(m.Items), Chars: len(m.Markdown)}
		}
		s.DisplayMessages(conv.Platform, rows)

		out, err := chatAPI.Render(conv, format)
		if err != nil {
			log.Fatalf("Failed to render conversation: %v", err)
		}

		if output == "" || output == "-" {
			os.Stdout.Write(out)
		} else {
			if err := os.WriteFile(output, out, 0644); err != nil {
				log.Fatalf("Failed to write %s: %v", output, err)
			}
			fmt.Fprintf(os.Stderr, "Wrote %d messages to %s\n", len(conv.Messages), output)
		}

		if archive {
			stored, err := chatAPI.Archive(conv)
			if err != nil {
				log.Fatalf("Failed to archive conversation: %v", err)
			}
			fmt.Fprintf(os.Stderr, "Archived as %s\n", stored.ID)
		}
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringP("platform", "p", "", "Platform adapter to use (detected when empty)")
	convertCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	convertCmd.Flags().StringP("format", "f", export.FormatMarkdown, "Output format (md or json)")
	convertCmd.Flags().Bool("archive", false, "Store the Markdown export in the archive")
	convertCmd.Flags().Bool("no-numbering", false, "Do not number message headings")
	convertCmd.Flags().String("title", "", "Override the conversation title")
	convertCmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")
}
