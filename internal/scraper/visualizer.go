package scraper

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// MessageSummary is one row of the verbose conversion table.
type MessageSummary struct {
	Role  string
	Items int
	Chars int
}

func (s *Scraper) DisplayLoadBanner() {
	if s.Config.Verbose {
		green := color.New(color.FgGreen).SprintFunc()
		banner := "==============================================================================\n"
		banner += green("       💬 Conversation Export 💬\n")
		banner += "==============================================================================\n"
		banner += fmt.Sprintf("Source: %s\n", s.Source)
		banner += "Configuration:\n"
		banner += fmt.Sprintf("  - Timeout: %s\n", s.Config.Timeout)
		banner += fmt.Sprintf("  - Page Size: %d bytes\n", len(s.Raw))
		banner += "=============================================================================="
		fmt.Fprintln(s.out, banner)
	}
}

func (s *Scraper) DisplayMetadata() {
	if s.Config.Verbose {
		t := table.NewWriter()
		t.SetOutputMirror(s.out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Field", "Value"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignLeft, WidthMax: 20},
			{Number: 2, Align: text.AlignLeft, WidthMax: 80},
		})

		t.AppendRow(table.Row{"Title", s.Metadata.Title})
		t.AppendRow(table.Row{"Description", s.Metadata.Description})
		t.AppendSeparator()
		t.Render()
	}
}

func (s *Scraper) DisplayMessages(platform string, rows []MessageSummary) {
	if s.Config.Verbose {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(s.out, "%s %s, %d messages\n", green("✅ Extracted"), platform, len(rows))

		t := table.NewWriter()
		t.SetOutputMirror(s.out)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Role", "Items", "Characters"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, Align: text.AlignRight},
			{Number: 2, Align: text.AlignLeft},
			{Number: 3, Align: text.AlignRight},
			{Number: 4, Align: text.AlignRight},
		})

		for i, r := range rows {
			t.AppendRow(table.Row{i + 1, r.Role, strconv.Itoa(r.Items), strconv.Itoa(r.Chars)})
		}
		t.AppendSeparator()
		t.Render()
	}
}

func (s *Scraper) DisplayError(err error) {
	if s.Config.Verbose {
		red := color.New(color.FgRed).SprintFunc()
		box := "┌────── " + red("⚠ Error") + " ──────┐\n"
		box += fmt.Sprintf("│ %-20s │\n", err.Error())
		box += "└─────────────────────┘"
		fmt.Fprintln(s.out, box)
	}
}

// StartSpinner animates message until the returned stop function is called.
// stop waits for the final line to be written.
func (s *Scraper) StartSpinner(message string) (stop func()) {
	if !s.Config.Verbose {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		spinner := `|/-\`
		i := 0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				fmt.Fprintf(s.out, "\r%s... [%s]", color.YellowString("%s", message), string(spinner[i]))
				i = (i + 1) % len(spinner)
			case <-done:
				fmt.Fprintf(s.out, "\r%s... [%s]\n", color.GreenString("%s", message), "✔")
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-finished
		})
	}
}
