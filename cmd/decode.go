package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/warchat/bus"
	"github.com/luma/warchat/client"
	"github.com/luma/warchat/internal/env"
	"github.com/luma/warchat/protocol"
	"github.com/luma/warchat/state"
)

var DecodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Replay a captured server stream and print the resulting state",
	Long: `Replay a captured server stream and print the resulting state

Lines may end in CRLF or LF. Without a file the stream is read from stdin.
The profile from the config decides who "we" are.

Usage
	warchat decode capture.log
	nc chat.example.com 6112 | warchat decode

`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		conf, err := env.LoadConfig(ctx, configPath)
		if err != nil {
			return err
		}

		log, err := env.MakeLogger(debug)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		in := cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open capture: %w", err)
			}
			defer f.Close()

			in = f
		}

		snap, err := decode(ctx, in, conf, log)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(snap)
	},
}

func decode(ctx context.Context, in io.Reader, conf *env.Config, log *zap.Logger) (state.Snapshot, error) {
	session := client.New(client.Options{
		Profile:  conf.BusProfile(),
		Settings: conf.BusSettings(),
		Offline:  true,
		Log:      log.Named("session"),
	})
	defer session.Close()

	go session.Run(ctx) //nolint:errcheck

	session.Signal(bus.SocketConnected)

	var framer protocol.Framer
	buf := make([]byte, 4096)

	for {
		n, err := in.Read(buf)
		if n > 0 {
			if block, ok := framer.Feed(buf[:n]); ok {
				session.Receive(block)
			}
		}

		if err == nil {
			continue
		}

		if block, ok := framer.Flush(); ok {
			session.Receive(block)
		}

		if errors.Is(err, io.EOF) {
			break
		}

		return state.Snapshot{}, fmt.Errorf("failed to read capture: %w", err)
	}

	return session.Snapshot(ctx)
}
