package mcp

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"

	"github.com/tk103331/eino-browser-demo/config"
)

const httpTimeout = 30 * time.Second

// Dialer opens a started client for one configured server
type Dialer func(ctx context.Context, name string, server config.MCPServer) (*client.Client, error)

// Dial is the default Dialer: stdio, SSE or streamable HTTP depending on the server type
func Dial(ctx context.Context, name string, server config.MCPServer) (*client.Client, error) {
	var (
		cli *client.Client
		err error
	)

	switch normalizeType(server.Type) {
	case TypeStdio:
		// stdio clients start the subprocess on creation
		return newStdioClient(server)
	case TypeSSE:
		cli, err = newSSEClient(server)
	case TypeStreamableHTTP:
		cli, err = newStreamableHTTPClient(server)
	default:
		return nil, NewMCPError("dial", name, "", fmt.Errorf("unsupported MCP server type %q: %w", server.Type, ErrInvalidConfig))
	}
	if err != nil {
		return nil, err
	}

	if err := cli.Start(ctx); err != nil {
		_ = cli.Close()
		return nil, fmt.Errorf("failed to start MCP client: %w", err)
	}
	return cli, nil
}

func newStdioClient(server config.MCPServer) (*client.Client, error) {
	if server.Cmd == "" {
		return nil, fmt.Errorf("STDIO type MCP server must specify cmd: %w", ErrInvalidConfig)
	}

	// sorted so the subprocess environment is reproducible
	keys := make([]string, 0, len(server.Env))
	for k := range server.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, server.Env[k]))
	}

	cli, err := client.NewStdioMCPClient(server.Cmd, env, server.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create STDIO MCP client: %w", err)
	}
	return cli, nil
}

func newStreamableHTTPClient(server config.MCPServer) (*client.Client, error) {
	if server.URL == "" {
		return nil, fmt.Errorf("StreamableHTTP type MCP server must specify URL: %w", ErrInvalidConfig)
	}

	options := []transport.StreamableHTTPCOption{transport.WithHTTPTimeout(httpTimeout)}
	if len(server.Headers) > 0 {
		options = append(options, transport.WithHTTPHeaders(server.Headers))
	}

	cli, err := client.NewStreamableHttpClient(server.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create StreamableHTTP MCP client: %w", err)
	}
	return cli, nil
}

func newSSEClient(server config.MCPServer) (*client.Client, error) {
	if server.URL == "" {
		return nil, fmt.Errorf("SSE type MCP server must specify URL: %w", ErrInvalidConfig)
	}

	var options []transport.ClientOption
	if len(server.Headers) > 0 {
		options = append(options, transport.WithHeaders(server.Headers))
	}

	cli, err := client.NewSSEMCPClient(server.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE MCP client: %w", err)
	}
	return cli, nil
}
