package main

import (
	"github.com/spf13/cobra"

	"github.com/top-on/optimal-congress/internal/ui"
)

func (c *cli) fetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch events and rooms from API, and update local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c.printf("Fetching events and rooms from API...\n")
			res, err := c.svc.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			c.printf("Found %d events and %d rooms at API.\n", res.Events, res.Rooms)
			c.printf("%s\n", ui.RenderMuted("Saved to "+c.store.Path()))
			return nil
		},
	}
}
