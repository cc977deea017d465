package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/yanggf8/travel-2026/internal/registry"
)

var detectCmd = &cobra.Command{
	Use:   "detect <url>",
	Short: "Show which vendor parser a URL maps to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, ok := registry.DetectOTA(args[0])
		if !ok {
			return eris.Errorf("no known OTA matches %s", args[0])
		}
		fmt.Println(source)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
}
