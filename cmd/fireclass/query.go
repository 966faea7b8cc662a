package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/aretw0/fireclass/pkg/core"
)

func newQueryCmd(a *app) *cobra.Command {
	var (
		wheres []string
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "query [collection]",
		Short: "Print the documents matching a set of filters",
		Long: `Print the documents of a collection matching every --where filter.

A filter is "field op value" with op one of <, <=, ==, >=, >, array_contains.
Values are read as null, booleans, integers, floats or RFC 3339 timestamps
when they parse as such; anything else, or any quoted text, is a string.

  fireclass query User --where "is_active == true" --where 'email_address == "a@b.com"' --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			preds := make([]core.Predicate, 0, len(wheres))
			for _, w := range wheres {
				p, err := parseWhere(w)
				if err != nil {
					return err
				}
				preds = append(preds, p)
			}

			ctx := cmd.Context()
			db, c, err := a.open(ctx, true)
			if err != nil {
				return err
			}
			defer db.Close()

			q := c.Collection(args[0]).Query()
			for _, p := range preds {
				q = q.Where(p.Field, p.Op, p.Value)
			}
			if limit >= 0 {
				q = q.Limit(limit)
			}

			it := q.Documents(ctx, nil)
			defer it.Stop()

			docs := []document{}
			for {
				snap, err := it.Next()
				if errors.Is(err, core.Done) {
					break
				}
				if err != nil {
					return err
				}
				docs = append(docs, toDocument(snap))
			}
			a.logger.Debug("query finished", "collection", args[0], "filters", len(preds), "results", len(docs))
			return write(cmd.OutOrStdout(), format, docs)
		},
	}

	cmd.Flags().StringArrayVar(&wheres, "where", nil, `filter "field op value" (repeatable)`)
	cmd.Flags().IntVar(&limit, "limit", -1, "maximum number of documents (-1: no limit)")
	cmd.Flags().StringVar(&format, "format", "json", "output format (json, yaml)")
	return cmd
}
