package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"flowcanvas/internal/catalog"

	"github.com/spf13/cobra"
)

func newKindsCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the node kinds in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tTITLE\tINPUTS\tOUTPUTS")
			for _, spec := range catalog.Kinds() {
				var in, out []string
				for _, h := range spec.Handles {
					if h.Direction == catalog.HandleTarget {
						in = append(in, h.Suffix)
					} else {
						out = append(out, h.Suffix)
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", spec.Kind, spec.Title, joinOrDash(in), joinOrDash(out))
			}
			return tw.Flush()
		},
	}
}

func joinOrDash(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ",")
}
