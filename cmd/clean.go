package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Deletes all exports from the archive",
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")

		if !yes {
			reader := bufio.NewReader(os.Stdin)
			fmt.Println(color.RedString("WARNING: This will delete all exports from the archive and is not recoverable."))
			fmt.Print("Are you sure you want to continue? (yes/no): ")

			response, err := reader.ReadString('\n')
			if err != nil {
				fmt.Println("Clean operation cancelled.")
				return
			}

			if strings.TrimSpace(strings.ToLower(response)) != "yes" {
				fmt.Println("Clean operation cancelled.")
				return
			}
		}

		cfg, log := loadConfig()
		st := openStorage(cfg, log)
		defer st.Close()

		if err := newAPI(cfg, st, false, log).Clean(); err != nil {
			log.Fatalf("Failed to clean archive: %v", err)
		}

		fmt.Println("Archive cleaned successfully.")
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
