package cmd

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/thisisdope/dlt/internal/relational"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve normalization as an MCP tool on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sch, err := loadSchema("document")
		if err != nil {
			return err
		}

		s := server.NewMCPServer("dlt-normalize", "0.1.0")
		tool := mcp.NewTool("normalize",
			mcp.WithDescription("Decompose a nested JSON document into flat, relationally linked rows"),
			mcp.WithString("document", mcp.Required(), mcp.Description("The JSON object to normalize")),
			mcp.WithString("table", mcp.Description("Root table name (default: schema name)")),
			mcp.WithString("load_id", mcp.Description("Load identifier stamped on the root row")),
		)
		s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			raw, err := req.RequireString("document")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			data, err := oj.ParseString(raw)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("parse document: %v", err)), nil
			}
			doc, ok := data.(map[string]any)
			if !ok {
				return mcp.NewToolResultError("document must be a JSON object"), nil
			}
			if table := req.GetString("table", ""); table != "" {
				doc = relational.WithTableName(doc, table)
			}

			var out []map[string]any
			err = relational.Normalize(sch.Clone(), doc, req.GetString("load_id", ""), func(e relational.Entry) error {
				entry := map[string]any{
					"table": e.Table,
					"row":   map[string]any(e.Row),
				}
				if e.ParentTable != "" {
					entry["parent_table"] = e.ParentTable
				}
				out = append(out, entry)
				return nil
			})
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(oj.JSON(out)), nil
		})

		return server.ServeStdio(s)
	},
}
