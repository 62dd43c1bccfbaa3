package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kdduha/audioflow/internal/inbox"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Convert recordings dropped into the inbox directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			cfg := a.cfg.Inbox

			if err := os.MkdirAll(cfg.Input, 0o755); err != nil {
				return fmt.Errorf("create inbox: %w", err)
			}
			converter, err := inbox.NewConverter(a.pipeline, cfg.Output, a.logger)
			if err != nil {
				return err
			}

			w, err := inbox.New(cfg.Input, converter.Handle, a.logger, cfg.MaxConcurrent, inbox.DefaultSettle)
			if err != nil {
				return err
			}
			defer w.Stop()

			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
