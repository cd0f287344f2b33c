package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/top-on/optimal-congress/internal/adapters/prompt"
	"github.com/top-on/optimal-congress/internal/domain/model"
	"github.com/top-on/optimal-congress/internal/ui"
	"github.com/top-on/optimal-congress/pkg/logger"
)

func (c *cli) rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate",
		Short: "Interactively rate those events that have not been rated yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c.printf(msgLoading)

			events, err := c.svc.Events(ctx)
			if err != nil {
				return err
			}
			ratings, err := c.svc.Ratings(ctx)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				c.printf(msgNoEvents)
				return nil
			}
			c.printf("\nFound %d events and %d ratings.\n", len(events), len(ratings))

			unrated, err := c.svc.UnratedEvents(ctx)
			if err != nil {
				return err
			}
			if len(unrated) == 0 {
				c.printf(msgNothingToRate)
				return nil
			}

			if f, ok := c.in.(*os.File); ok && !ui.IsTerminal(f) {
				c.log.Debug(ctx, "stdin is not a terminal, reading answers from input")
			}

			p := prompt.New(c.in, c.out,
				prompt.WithHubRoute(c.cfg.HubEventRoute),
				prompt.WithLocation(c.loc),
			)
			n, err := p.Rate(ctx, unrated, func(ctx context.Context, r model.Rating) error {
				_, err := c.svc.Rate(ctx, r.EventID, r.Score)
				return err
			})
			c.log.Debug(ctx, "rating session finished", logger.Int("saved", n))
			return err
		},
	}
}
