package gen

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate documentation",
	Long:  `Generate documentation for the warchat commands`,
}

func init() {
	RootCmd.AddCommand(ManPagesCmd)
}
