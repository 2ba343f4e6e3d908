package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/echoos/voicegate/cmd/voicegate/internal/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(build.String())
		if IsVerbose() {
			fmt.Printf("  go:     %s\n", runtime.Version())
			if cfg, err := GetConfig(); err == nil {
				if dir, err := cfg.ResolveDataDir(); err == nil {
					fmt.Printf("  data:   %s\n", dir)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
