package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of paper-sorter",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("paper-sorter %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
