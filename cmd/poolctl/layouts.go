package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/poolkit/pool"
)

var layoutsYAML bool

func init() {
	cmd := newLayoutsCmd()
	cmd.Flags().BoolVar(&layoutsYAML, "yaml", false, "Print layouts as YAML files")
	rootCmd.AddCommand(cmd)
}

func newLayoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts [name]",
		Short: "List preset pool layouts",
		Long: `The layouts command lists the preset pool layouts. With --yaml the
layouts are printed in the format accepted by --config, which is a convenient
starting point for a custom layout.

Example:
  poolctl layouts
  poolctl layouts vector --yaml > vector.yaml
  poolctl --config vector.yaml simulate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayouts(args)
		},
	}
}

func runLayouts(args []string) error {
	layouts := pool.Layouts()
	if len(args) == 1 {
		l, ok := pool.LookupLayout(args[0])
		if !ok {
			return fmt.Errorf("unknown layout %q", args[0])
		}
		layouts = []pool.Layout{l}
	}

	if jsonOut {
		return printJSON(layouts)
	}

	for i, l := range layouts {
		if layoutsYAML {
			data, err := pool.EncodeLayout(l)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprintln(os.Stdout, "---")
			}
			os.Stdout.Write(data)
			continue
		}
		numbers.Fprintf(os.Stdout, "%-8s %d buckets, %d bytes  %s\n", l.Name, len(l.Buckets), l.Capacity(), l)
	}
	return nil
}
