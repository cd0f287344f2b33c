package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const ratingsFile = "ratings.csv"

func (c *cli) dumpCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Export all latest ratings to CSV, for bulk editing",
		Long: "Export the latest rating of each rated event to CSV, best first.\n" +
			"Columns: rating,name,url,event_id. Use --file - for stdout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			w, err := c.openOutput(path)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := w.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("close %s: %w", path, cerr)
				}
			}()

			n, err := c.svc.DumpRatings(cmd.Context(), w)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.status(path), "Dumped %d ratings to %s.\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", ratingsFile, "CSV file to write")
	return cmd
}

func (c *cli) loadCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Bulk import ratings from CSV",
		Long: "Import ratings from CSV. This overwrites the ratings of listed events;\n" +
			"unlisted events keep their ratings and rows with an empty rating are skipped.\n" +
			"Required columns: rating,event_id. Additional columns are ignored.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := c.openInput(path)
			if err != nil {
				return err
			}
			defer r.Close()

			n, err := c.svc.LoadRatings(cmd.Context(), r)
			if err != nil {
				return err
			}
			c.printf("Loaded %d ratings from %s.\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", ratingsFile, "CSV file to read")
	return cmd
}
