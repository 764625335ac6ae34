// Package scenectl implements the scene control CLI.
package scenectl

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	entrypoint "github.com/louisbranch/sceneforge/internal/platform/cmd"
	"github.com/louisbranch/sceneforge/internal/services/control/client"
)

// rootOptions carries the shared connection flags.
type rootOptions struct {
	URL     string
	Token   string
	Timeout time.Duration
	Retries int
}

// envConfig maps connection settings from the environment; flags override.
type envConfig struct {
	URL   string `env:"SCENEFORGE_CONTROL_URL"   envDefault:"ws://localhost:8765/ws"`
	Token string `env:"SCENEFORGE_CONTROL_TOKEN"`
}

// NewRoot builds the scenectl command tree.
func NewRoot() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "scenectl",
		Short:         "Control a running scene server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var env envConfig
			if err := entrypoint.ParseConfig(&env); err != nil {
				return err
			}
			if !cmd.Flags().Changed("url") {
				opts.URL = env.URL
			}
			if !cmd.Flags().Changed("token") {
				opts.Token = env.Token
			}
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}

	cmd.PersistentFlags().StringVar(&opts.URL, "url", "ws://localhost:8765/ws", "control server WebSocket URL")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "bearer token for the control server")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "per-command timeout")
	cmd.PersistentFlags().IntVar(&opts.Retries, "retries", 2, "send retries after connection errors")

	cmd.AddCommand(newSendCmd(opts))
	cmd.AddCommand(newSceneCmd(opts))
	cmd.AddCommand(newRenderCmd(opts))
	cmd.AddCommand(newApplyCmd(opts))
	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newStatusCmd(opts))
	return cmd
}

func (o *rootOptions) dial() *client.Client {
	return client.New(o.URL, client.Options{
		Token:          o.Token,
		CommandTimeout: o.Timeout,
		MaxRetries:     o.Retries,
	})
}

func printJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
