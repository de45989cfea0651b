package cli

import (
	"github.com/spf13/cobra"
)

// WorkerDeps wires the worker command tree to the actual process
// behavior; main() supplies the closures.
type WorkerDeps struct {
	Serve func(configPath string) error
}

// NewWorkerRootCmd builds the `worker` command tree: a single `serve`
// subcommand that registers with a coordinator and starts the worker's
// own RPC server.
func NewWorkerRootCmd(deps WorkerDeps) *cobra.Command {
	root := &cobra.Command{
		Use:   "worker",
		Short: "Run a fog inference worker",
	}

	var configPath string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the worker RPC server and register with the coordinator",
		RunE: func(cmd *cobra.Command, args []string) error {
			return deps.Serve(configPath)
		},
	}
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to worker.toml")
	root.AddCommand(serveCmd)

	return root
}
