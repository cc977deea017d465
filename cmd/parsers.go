package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yanggf8/travel-2026/internal/parsers"
	"github.com/yanggf8/travel-2026/internal/scraper"
)

var parsersCmd = &cobra.Command{
	Use:   "parsers",
	Short: "List registered vendor parsers",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := parsers.DefaultRegistry()
		for _, source := range reg.Sources() {
			p, err := reg.Parser(source)
			if err != nil {
				return err
			}
			marker := " "
			if _, ok := p.(scraper.PagePreparer); ok {
				marker = "*"
			}
			fmt.Printf("%s %s\n", marker, source)
		}
		fmt.Println("\n* = parser drives page interaction before extraction")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parsersCmd)
}
