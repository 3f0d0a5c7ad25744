package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWaitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "wait",
		Short: "Wait until every target accepts connections, then exit",
		Long: "wait probes every configured target in order. It exits 0 once all are ready, " +
			"1 when a target stays unreachable for the whole budget and 130 when interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := flags.load(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			deps, err := openDependencies(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = deps.Close(ctx) }()

			if err := deps.waitAll(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ready: %d target(s)\n", len(deps.targets))
			return nil
		},
	}
}
