package scenectl

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/louisbranch/sceneforge/internal/services/agent"
)

func newApplyCmd(opts *rootOptions) *cobra.Command {
	var (
		file   string
		render bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Execute a YAML plan document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := opts.dial()
			defer c.Close()

			workflow := agent.NewWorkflow(c, opts.Retries+1)
			result, err := workflow.Process(cmd.Context(), agent.Request{
				PlanPath:      file,
				CaptureRender: render,
			})
			if err != nil {
				return err
			}
			return reportWorkflow(result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "plan document path")
	cmd.Flags().BoolVar(&render, "render", false, "render the scene after the plan completes")
	cmd.MarkFlagRequired("file")
	return cmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	var render bool

	cmd := &cobra.Command{
		Use:   "run <script.lua>",
		Short: "Execute a Lua scenario script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.dial()
			defer c.Close()

			workflow := agent.NewWorkflow(c, opts.Retries+1)
			result, err := workflow.Process(cmd.Context(), agent.Request{
				ScenarioPath:  args[0],
				CaptureRender: render,
			})
			if err != nil {
				return err
			}
			return reportWorkflow(result)
		},
	}

	cmd.Flags().BoolVar(&render, "render", false, "render the scene after the scenario completes")
	return cmd
}

func reportWorkflow(result agent.Result) error {
	fmt.Printf("plan %q: %d completed, %d failed\n",
		result.Plan.Description, result.Execution.Completed, result.Execution.Failed)
	for _, msg := range result.Execution.Errors {
		fmt.Printf("  error: %s\n", msg)
	}
	fmt.Println(result.Analysis.Description)
	if result.RenderPath != "" {
		fmt.Printf("render: %s\n", result.RenderPath)
	}
	if !result.Success {
		return fmt.Errorf("%d steps failed", result.Execution.Failed)
	}
	return nil
}
