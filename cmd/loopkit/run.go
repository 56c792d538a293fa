package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/loopkit/config"
	"github.com/dshills/loopkit/logging"
	"github.com/dshills/loopkit/runtime"
	"github.com/dshills/loopkit/script"
)

// newRunCmd builds and runs a configured runtime, hosting the dispatcher
// on the main goroutine.
func newRunCmd() *cobra.Command {
	var (
		scriptDir   string
		stopTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <config>",
		Short: "Run a configured runtime until an exit event or SIGINT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := f.Validate(); err != nil {
				return err
			}

			console := true
			if f.Log.Console != nil {
				console = *f.Log.Console
			}
			log := logging.New(logging.Config{
				File:       f.Log.File,
				MaxSizeMB:  f.Log.MaxSizeMB,
				MaxBackups: f.Log.MaxBackups,
				Level:      f.Log.Level,
				Console:    console,
			})

			reg, err := f.Registry()
			if err != nil {
				return err
			}

			dir := scriptDir
			if dir == "" {
				dir = filepath.Dir(args[0])
			}
			resolver := &script.Resolver{Dir: dir, Log: log}
			loops, err := f.BuildLoops(resolver, reg)
			if err != nil {
				return err
			}

			b := runtime.NewBuilder(runtime.WithRegistry(reg), runtime.WithLogger(log))
			for _, cfg := range loops {
				b.AddLoop(cfg)
			}
			rt, err := b.Build()
			if err != nil {
				return err
			}

			if err := rt.Start(); err != nil {
				return err
			}

			signals := make(chan os.Signal, 1)
			signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-signals
				rt.RequestExit()
			}()

			runErr := rt.Run()

			ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			if err := rt.Wait(ctx); err != nil {
				log.Warn().Err(err).Msg("exiting with loops still running")
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&scriptDir, "scripts", "", "directory scripts are resolved against (default: config file directory)")
	cmd.Flags().DurationVar(&stopTimeout, "stop-timeout", 5*time.Second, "how long to wait for loops after shutdown")
	return cmd
}
