package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Searches archived exports by title and content",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := args[0]
		numResults, _ := cmd.Flags().GetInt("num-results")

		cfg, log := loadConfig()
		st := openStorage(cfg, log)
		defer st.Close()

		exports, err := newAPI(cfg, st, false, log).SearchExports(query, numResults)
		if err != nil {
			log.Fatalf("Search failed: %v", err)
		}

		if len(exports) == 0 {
			fmt.Println("No matching exports found.")
			return
		}

		renderExports(exports)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntP("num-results", "n", 10, "Number of search results to return")
}
