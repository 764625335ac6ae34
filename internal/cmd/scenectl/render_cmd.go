package scenectl

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/louisbranch/sceneforge/internal/services/control/protocol"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		width  int
		height int
		engine string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the scene",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := protocol.RenderSceneParams{
				OutputPath: output,
				Engine:     engine,
			}
			if width != 0 || height != 0 {
				res := protocol.Resolution{width, height}
				params.Resolution = &res
			}

			c := opts.dial()
			defer c.Close()

			result, err := c.Render(cmd.Context(), params)
			if err != nil {
				return err
			}
			fmt.Printf("rendered %dx%d with %s in %.2fs: %s\n",
				result.Resolution[0], result.Resolution[1], result.Engine, result.Seconds, result.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path")
	cmd.Flags().IntVar(&width, "width", 0, "render width (requires --height)")
	cmd.Flags().IntVar(&height, "height", 0, "render height (requires --width)")
	cmd.Flags().StringVar(&engine, "engine", "", "render engine override")
	return cmd
}
