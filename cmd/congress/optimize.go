package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	service "github.com/top-on/optimal-congress/internal/app"
	"github.com/top-on/optimal-congress/internal/ui"
)

const (
	startLayout = "Mon 02 15:04"
	endLayout   = "15:04"
)

// minScoreFlag returns the --min-score value, or NoMinScore when unset.
func minScoreFlag(cmd *cobra.Command) float64 {
	if !cmd.Flags().Changed("min-score") {
		return service.NoMinScore
	}
	v, _ := cmd.Flags().GetFloat64("min-score")
	return v
}

// hasRatings prints guidance and returns false when nothing can be optimized.
func (c *cli) hasRatings(cmd *cobra.Command) (bool, error) {
	ctx := cmd.Context()
	events, err := c.svc.Events(ctx)
	if err != nil {
		return false, err
	}
	ratings, err := c.svc.Ratings(ctx)
	if err != nil {
		return false, err
	}
	if len(events) == 0 || len(ratings) == 0 {
		c.printf(msgNoRated)
		return false, nil
	}
	return true, nil
}

func (c *cli) optimizeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Optimize the schedule based on ratings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			minScore := minScoreFlag(cmd)

			if asJSON {
				sched, err := c.svc.Schedule(ctx, minScore)
				if err != nil {
					return err
				}
				data, err := json.MarshalIndent(sched, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal schedule: %w", err)
				}
				c.printf("%s\n", data)
				return nil
			}

			c.printf(msgLoading)
			ok, err := c.hasRatings(cmd)
			if err != nil || !ok {
				return err
			}

			res, err := c.svc.Optimize(ctx, minScore)
			if err != nil {
				return err
			}

			c.printf("Scheduled events:\n")
			for _, e := range res.Events {
				c.printf("- %s-%s: %s%s\n",
					e.ScheduleStart.In(c.loc).Format(startLayout),
					e.ScheduleEnd.In(c.loc).Format(endLayout),
					ui.DotLeader(e.Name, 50, 53),
					ui.RenderMuted(e.URL(c.cfg.HubEventRoute)),
				)
			}
			c.printf("%s\n", ui.RenderSuccess(fmt.Sprintf("Total score %g from %d of %d rated events (%s solver).",
				res.TotalScore, len(res.Events), res.Candidates, res.Solver)))
			return nil
		},
	}
	cmd.Flags().Float64("min-score", 0, "only consider events rated at least this score")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
