package main

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	service "github.com/top-on/optimal-congress/internal/app"
)

const calendarFile = "schedule.ics"

func (c *cli) exportCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the optimized schedule as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ok, err := c.hasRatings(cmd)
			if err != nil || !ok {
				return err
			}

			// An existing file is only replaced by a non-empty calendar.
			var buf bytes.Buffer
			n, err := c.svc.ExportCalendar(cmd.Context(), &buf, minScoreFlag(cmd))
			if errors.Is(err, service.ErrEmptySchedule) {
				fmt.Fprintf(c.status(path), "\nNo events scored high enough to be scheduled. Nothing exported.\n")
				return nil
			}
			if err != nil {
				return err
			}

			w, err := c.openOutput(path)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := w.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("close %s: %w", path, cerr)
				}
			}()
			if _, err := buf.WriteTo(w); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(c.status(path), "Exported %d events to %s.\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", calendarFile, "calendar file to write")
	cmd.Flags().Float64("min-score", 0, "only consider events rated at least this score")
	return cmd
}
