package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/fireclass/pkg/core"
)

func newGetCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "get [collection] [id]",
		Short: "Print one document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			collection, id := args[0], args[1]

			ctx := cmd.Context()
			db, c, err := a.open(ctx, true)
			if err != nil {
				return err
			}
			defer db.Close()

			snap, err := c.Collection(collection).Doc(id).Get(ctx)
			if err != nil {
				return err
			}
			if !snap.Exists {
				return fmt.Errorf("%w: %s/%s", core.ErrNotFound, collection, id)
			}
			return write(cmd.OutOrStdout(), format, toDocument(snap))
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format (json, yaml)")
	return cmd
}
