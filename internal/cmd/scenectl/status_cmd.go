package scenectl

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var withErrors bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print server status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := opts.dial()
			defer c.Close()

			status, err := c.ServerStatus(cmd.Context())
			if err != nil {
				return err
			}
			if withErrors {
				stats, err := c.ErrorStats(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(map[string]any{"status": status, "errors": stats})
			}
			return printJSON(status)
		},
	}

	cmd.Flags().BoolVar(&withErrors, "errors", false, "include error statistics")
	return cmd
}
