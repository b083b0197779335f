package mcp

import (
	"context"
	"fmt"

	einomcp "github.com/cloudwego/eino-ext/components/tool/mcp"
	"github.com/cloudwego/eino/components/tool"
	"github.com/mark3labs/mcp-go/client"
	mcpProtocol "github.com/mark3labs/mcp-go/mcp"
)

const (
	clientName    = "eino-browser-demo"
	clientVersion = "1.0.0"
)

// initSession performs the MCP handshake on a started client
func initSession(ctx context.Context, cli *client.Client) (*mcpProtocol.InitializeResult, error) {
	req := mcpProtocol.InitializeRequest{
		Params: mcpProtocol.InitializeParams{
			ProtocolVersion: mcpProtocol.LATEST_PROTOCOL_VERSION,
			ClientInfo: mcpProtocol.Implementation{
				Name:    clientName,
				Version: clientVersion,
			},
		},
	}

	res, err := cli.Initialize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	return res, nil
}

// remoteTool is one tool listed by a server, adapted for eino
type remoteTool struct {
	name string
	tool tool.InvokableTool
}

// loadTools lists the server's tools through eino-ext's MCP adapter
func loadTools(ctx context.Context, cli *client.Client) ([]remoteTool, error) {
	baseTools, err := einomcp.GetTools(ctx, &einomcp.Config{Cli: cli})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	out := make([]remoteTool, 0, len(baseTools))
	for _, bt := range baseTools {
		it, ok := bt.(tool.InvokableTool)
		if !ok {
			continue
		}
		info, err := bt.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get tool info: %w", err)
		}
		out = append(out, remoteTool{name: info.Name, tool: it})
	}
	return out, nil
}
