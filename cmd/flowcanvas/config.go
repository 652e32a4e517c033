package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			if a.cfgPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", a.cfgPath)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
