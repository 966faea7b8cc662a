package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [collection] [id...]",
		Short: "Delete documents from a collection",
		Long:  `Delete permanently removes the given documents. Missing documents are ignored.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection, ids := args[0], args[1:]

			ctx := cmd.Context()
			db, c, err := a.open(ctx, false)
			if err != nil {
				return err
			}
			defer db.Close()

			col := c.Collection(collection)
			for _, id := range ids {
				if _, err := col.Doc(id).Delete(ctx); err != nil {
					return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Document deleted: %s/%s\n", collection, id)
			}
			return nil
		},
	}
}
