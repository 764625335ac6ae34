package scenectl

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSceneCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Inspect or reset the scene",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newSceneInfoCmd(opts))
	cmd.AddCommand(newSceneClearCmd(opts))
	return cmd
}

func newSceneInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the scene graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := opts.dial()
			defer c.Close()

			scene, err := c.SceneInfo(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(scene)
		},
	}
}

func newSceneClearCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all objects except the default camera and light",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := opts.dial()
			defer c.Close()

			result, err := c.ClearScene(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d objects, preserved %d\n", result.Deleted, len(result.Preserved))
			return nil
		},
	}
}
