package main

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aretw0/fireclass/pkg/core"
)

func newCollectionsCmd(a *app) *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List the collections of the store",
		Long: `List the collections holding at least one document. --match keeps only
the names matching a glob pattern, e.g. "User*" or "{User,Account}".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if match != "" && !doublestar.ValidatePattern(match) {
				return fmt.Errorf("invalid pattern %q", match)
			}

			ctx := cmd.Context()
			db, c, err := a.open(ctx, true)
			if err != nil {
				return err
			}
			defer db.Close()

			lister, ok := c.(core.CollectionLister)
			if !ok {
				return fmt.Errorf("adapter %s cannot list collections", a.adapter)
			}
			names, err := lister.Collections(ctx)
			if err != nil {
				return err
			}

			for _, name := range names {
				if match != "" {
					ok, err := doublestar.Match(match, name)
					if err != nil {
						return err
					}
					if !ok {
						continue
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "glob pattern the collection names must match")
	return cmd
}
