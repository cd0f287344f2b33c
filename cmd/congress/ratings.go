package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/top-on/optimal-congress/internal/ui"
)

func (c *cli) ratingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ratings",
		Short: "List all latest ratings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c.printf(msgLoading)

			events, err := c.svc.Events(ctx)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				c.printf(msgNoEvents)
				return nil
			}
			latest, err := c.svc.LatestRatings(ctx)
			if err != nil {
				return err
			}
			if len(latest) == 0 {
				c.printf(msgNoRatings)
				return nil
			}

			c.printf("Latest ratings:\n")
			for _, er := range latest {
				score := strconv.FormatFloat(er.Rating.Score, 'g', -1, 64)
				c.printf("- Rating: %s - %s%s\n",
					ui.RenderAccent(score),
					ui.DotLeader(er.Event.Name, 50, 52),
					ui.RenderMuted(er.Event.URL(c.cfg.HubEventRoute)),
				)
			}
			return nil
		},
	}
}
