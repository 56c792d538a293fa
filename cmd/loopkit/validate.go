package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/loopkit/config"
)

// newValidateCmd checks a configuration without loading scripts or
// starting anything.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config>",
		Short: "Check a runtime configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := f.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d events, %d loops, ok\n",
				args[0], len(f.Events), len(f.Loops))
			return nil
		},
	}
}
