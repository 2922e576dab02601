package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/warchat/cmd/gen"
)

var (
	// Path of the YAML config file
	configPath string

	// Development logging
	debug bool
)

var RootCmd = &cobra.Command{
	Use:   "warchat",
	Short: "A chat client for classic and init6 game-lobby servers",
	Long: `warchat logs in to a game-lobby chat server, decodes what the server
sends into channel, user, friend, MOTD and chat state, and serves that
state over HTTP.`,
	SilenceUsage: true,
}

func init() {
	flags := RootCmd.PersistentFlags()

	flags.StringVarP(&configPath, "config", "c", "", "YAML config file, defaults to ./warchat.yaml if present")
	flags.BoolVar(&debug, "debug", false, "Log at debug level in a human readable format")

	RootCmd.AddCommand(StartCmd)
	RootCmd.AddCommand(DecodeCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
