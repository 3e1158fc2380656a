package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hlkit/internal/mcpserver"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the highlight, outline and lint tools over MCP on stdio",
		Long: `mcp runs a Model Context Protocol server on stdin and stdout. It offers
three tools: highlight and outline take document text plus an optional
grammar name or path, lint takes the contents of a grammar file.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"tui": "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.log.Info("mcp server starting", zap.Int("grammars", len(a.registry.Names())))
			return mcpserver.Serve(&mcpserver.Handlers{Engine: a.engine(), Log: a.log}, version)
		},
	}
}
