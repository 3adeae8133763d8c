package main

import (
	"github.com/spf13/cobra"

	"basegraph.app/reviewdesk/internal/mcp"
)

var version = "dev"

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the review and chat tools over MCP (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stop := a.startJanitor(cmd.Context())
			defer stop()
			return mcp.NewServer(a.services.Review(), a.services.Chat(), version).ServeStdio()
		},
	}
}
