package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/tesh254/chatmd/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists archived exports",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		cfg, log := loadConfig()
		st := openStorage(cfg, log)
		defer st.Close()

		exports, total, err := newAPI(cfg, st, false, log).ListExports(limit, offset)
		if err != nil {
			log.Fatalf("Failed to list exports: %v", err)
		}

		if len(exports) == 0 {
			fmt.Println("No exports found.")
			return
		}

		renderExports(exports)
		fmt.Printf("Showing %d of %d exports.\n", len(exports), total)
	},
}

// renderExports prints an export table to stdout.
func renderExports(exports []*storage.Export) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Platform", "Title", "Messages", "Created", "Source"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignLeft, WidthMax: 40},
		{Number: 4, Align: text.AlignRight},
		{Number: 6, Align: text.AlignLeft, WidthMax: 50},
	})
	for _, e := range exports {
		t.AppendRow(table.Row{e.ID, e.Platform, e.Title, e.Messages, e.CreatedAt.Format("2006-01-02 15:04"), e.Source})
	}
	t.Render()
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntP("limit", "n", 20, "Number of exports to show")
	listCmd.Flags().Int("offset", 0, "Number of exports to skip")
}
