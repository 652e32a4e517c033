package main

import (
	"fmt"
	"os"
	"strings"

	"flowcanvas/internal/codec"
	"flowcanvas/internal/dag"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Report node count, edge count and DAG status of a pipeline document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			var c codec.Codec
			var err error
			if format != "" {
				c, err = codec.For(format)
			} else {
				c, err = codec.ForPath(path)
			}
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			g, err := c.Parse(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}

			res := dag.AnalyzeGraph(*g)
			order, _ := dag.TopologicalOrder(g.Nodes, g.Edges)
			a.logger.Debug("pipeline analyzed", zap.String("path", path), zap.Bool("is_dag", res.IsDag))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nodes:  %d\n", res.NumNodes)
			fmt.Fprintf(out, "edges:  %d\n", res.NumEdges)
			fmt.Fprintf(out, "is_dag: %t\n", res.IsDag)
			if res.IsDag && len(order) > 0 {
				fmt.Fprintf(out, "order:  %s\n", strings.Join(order, " -> "))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "document format (json|yaml); default from the file extension")
	return cmd
}
