// Package cli builds the cobra command trees for the coordinator and
// worker binaries, in the same "Use/Short/Long + RunE" style as the
// teacher's agent command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// CoordinatorDeps wires the cobra commands to the actual process
// behavior, so this package stays free of any direct dependency on the
// coordinator's wiring — main() supplies the closures.
type CoordinatorDeps struct {
	// Serve starts the coordinator's RPC server and blocks until it
	// exits or ctx-equivalent shutdown; configPath may be empty.
	Serve func(configPath string) error
}

// NewCoordinatorRootCmd builds the `coordinator` command tree: `serve`
// to run the process, and an `admin` subtree of RPC-client commands
// (rebalance/models/health) that talk to a running coordinator over
// HTTP rather than sharing in-process state — the admin surface is a
// client, not a REPL.
func NewCoordinatorRootCmd(deps CoordinatorDeps) *cobra.Command {
	root := &cobra.Command{
		Use:   "coordinator",
		Short: "Run or administer the fog inference coordinator",
	}

	var configPath string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the coordinator RPC server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return deps.Serve(configPath)
		},
	}
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to coordinator.toml")
	root.AddCommand(serveCmd)

	var adminAddr string
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer a running coordinator",
	}
	adminCmd.PersistentFlags().StringVar(&adminAddr, "coordinator", "http://127.0.0.1:50051", "coordinator base URL")

	adminCmd.AddCommand(&cobra.Command{
		Use:   "rebalance",
		Short: "Force a fresh assignment recomputation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminPost(adminAddr + "/rebalance")
		},
	})
	adminCmd.AddCommand(&cobra.Command{
		Use:   "models",
		Short: "List the current model catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminGet(adminAddr + "/models")
		},
	})
	adminCmd.AddCommand(&cobra.Command{
		Use:   "health",
		Short: "Check coordinator health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminGet(adminAddr + "/health")
		},
	})

	root.AddCommand(adminCmd)
	return root
}

var adminHTTPClient = &http.Client{Timeout: 10 * time.Second}

func adminGet(url string) error {
	resp, err := adminHTTPClient.Get(url)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	return printIndented(resp)
}

func adminPost(url string) error {
	resp, err := adminHTTPClient.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("POST %s: %w", url, err)
	}
	defer resp.Body.Close()
	return printIndented(resp)
}

func printIndented(resp *http.Response) error {
	var v interface{}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
