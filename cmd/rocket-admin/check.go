package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and resource definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := openRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			reg, problems := rt.loadResources(ctx)
			out := cmd.OutOrStdout()
			okColor := color.New(color.FgGreen, color.Bold)
			errColor := color.New(color.FgRed, color.Bold)
			infoColor := color.New(color.FgCyan)

			for _, res := range reg.All() {
				okColor.Fprint(out, "  ok    ")
				fmt.Fprintf(out, "%-24s ", res.PluralName)
				infoColor.Fprintf(out, "%s/%s (%d columns)\n", rt.cfg.Admin.NormalizedBasePath(), res.RoutePath, len(res.Columns))
			}
			for _, p := range problems {
				errColor.Fprint(out, "  error ")
				fmt.Fprintln(out, p)
			}

			if len(problems) > 0 {
				return fmt.Errorf("%d problem(s) found", len(problems))
			}
			okColor.Fprintf(out, "%d resource(s) ready\n", len(reg.All()))
			return nil
		},
	}
}
