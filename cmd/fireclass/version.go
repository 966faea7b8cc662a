package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/fireclass"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of fireclass",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fireclass version %s\n", fireclass.Version)
		},
	}
}
