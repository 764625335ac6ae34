package scenectl

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
)

func newSendCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send <command> [params-json]",
		Short: "Send a raw protocol command",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := args[0]
			if !protocol.Known(command) {
				return fmt.Errorf("unknown command %q", command)
			}

			var params map[string]any
			if len(args) == 2 {
				if err := json.Unmarshal([]byte(args[1]), &params); err != nil {
					return fmt.Errorf("parse params: %w", err)
				}
			}

			c := opts.dial()
			defer c.Close()

			resp, err := c.Send(cmd.Context(), command, params)
			if err != nil {
				return err
			}
			return printJSON(resp)
		},
	}
}
