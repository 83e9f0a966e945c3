package cmd

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Lists the platform adapters and how they are detected",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, log := loadConfig()

		reg, err := registry(cfg)
		if err != nil {
			log.Fatalf("Failed to load platforms: %v", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Hosts", "Detect", "Message Rules"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 3, Align: text.AlignLeft, WidthMax: 50},
			{Number: 4, Align: text.AlignRight},
		})
		for _, p := range reg.All() {
			t.AppendRow(table.Row{p.Name, strings.Join(p.Hosts, ", "), p.Detect, len(p.Messages)})
		}
		t.Render()
	},
}

func init() {
	rootCmd.AddCommand(platformsCmd)
}
