package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	reuseport "github.com/kavu/go_reuseport"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/warchat/api"
	"github.com/luma/warchat/client"
	"github.com/luma/warchat/internal/env"
	"github.com/luma/warchat/state"
	"github.com/luma/warchat/storage"
)

var StartCmd = &cobra.Command{
	Use:   "start",
	Short: "Connect to the chat server and serve the session over HTTP",
	Long: `Connect to the chat server and serve the session over HTTP

Usage
	warchat start
	warchat start --config warchat.yaml

`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer signalStop()

		conf, err := env.LoadConfig(ctx, configPath)
		if err != nil {
			return err
		}

		log, err := env.MakeLogger(debug || conf.Debug)
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		store := storage.NewInmemoryStore()
		if err := storage.Load(store, conf.StateFile); err != nil {
			return err
		}

		flushCtx, stopFlush := context.WithCancel(context.Background())
		flushed := make(chan struct{})
		go func() {
			defer close(flushed)
			storage.Flush(flushCtx, store, conf.StateFile, log.Named("flush")) //nolint:errcheck
		}()

		session := client.New(client.Options{
			Profile:     conf.BusProfile(),
			Settings:    conf.BusSettings(),
			Store:       store,
			DialTimeout: conf.DialTimeout,
			Trace:       conf.Trace,
			Log:         log.Named("session"),
		})

		router := api.NewRouter(api.Options{
			Session: session,
			Debug:   conf.DebugHTTP,
			Log:     log.Named("http"),
		})

		listener, err := reuseport.Listen("tcp", conf.HTTPAddr)
		if err != nil {
			return err
		}

		s := &http.Server{
			Handler: router,
		}

		// Initializing the server in a goroutine so that
		// it won't block the graceful shutdown handling below
		go func() {
			if err := s.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Http server errored", zap.Error(err))
			}
		}()

		sessionDone := make(chan error, 1)
		go func() {
			sessionDone <- session.Run(ctx)
		}()

		if conf.AutoConnect {
			if err := session.Do(ctx, func(e *state.Engine) { e.Connection.Connect() }); err != nil {
				log.Warn("Failed to connect on start", zap.Error(err))
			}
		}

		log.Info("Listening",
			zap.String("httpAddr", conf.HTTPAddr),
			zap.String("server", conf.Profile.Server),
			zap.String("stateFile", conf.StateFile))

		// Wait for the interrupt signal or for the session to give up.
		select {
		case <-ctx.Done():
		case err = <-sessionDone:
			if err != nil {
				log.Error("Session failed", zap.Error(err))
			}
		}

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		// The context is used to inform the server it has 5 seconds to finish
		// the request it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.SetKeepAlivesEnabled(false)

		err = multierr.Append(err, s.Shutdown(shutdownCtx))
		err = multierr.Append(err, session.Close())

		stopFlush()
		<-flushed
		err = multierr.Append(err, store.Close())

		if err != nil {
			log.Error("Forced to shut down", zap.Error(err))
		}

		log.Info("Exiting")
		return err
	},
}
