package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tk103331/eino-browser-demo/config"
)

// recorder keeps the arguments of every call the fake server receives
type recorder struct {
	mu    sync.Mutex
	calls map[string]map[string]any
}

func (r *recorder) record(name string, args map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]map[string]any{}
	}
	r.calls[name] = args
}

func (r *recorder) args(name string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

func fakePlaywrightServer(rec *recorder) *server.MCPServer {
	s := server.NewMCPServer("playwright-fake", "1.0.0", server.WithToolCapabilities(true))

	echo := func(name string) server.ToolHandlerFunc {
		return func(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
			rec.record(name, req.GetArguments())
			return mcpgo.NewToolResultText(name + " ok"), nil
		}
	}

	s.AddTool(mcpgo.NewTool(ToolNavigate,
		mcpgo.WithDescription("Navigate to a URL"),
		mcpgo.WithString("url", mcpgo.Required()),
	), func(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		rec.record(ToolNavigate, req.GetArguments())
		return mcpgo.NewToolResultText("Navigated to " + req.GetString("url", "")), nil
	})
	s.AddTool(mcpgo.NewTool(ToolFill,
		mcpgo.WithDescription("Fill an input"),
		mcpgo.WithString("selector", mcpgo.Required()),
		mcpgo.WithString("value", mcpgo.Required()),
	), echo(ToolFill))
	s.AddTool(mcpgo.NewTool(ToolVisibleText,
		mcpgo.WithDescription("Visible text"),
		mcpgo.WithString("random_string"),
	), echo(ToolVisibleText))
	s.AddTool(mcpgo.NewTool(ToolPressKey,
		mcpgo.WithDescription("Press a key"),
		mcpgo.WithString("key", mcpgo.Required()),
		mcpgo.WithString("selector"),
	), echo(ToolPressKey))
	s.AddTool(mcpgo.NewTool(ToolStartCodegen,
		mcpgo.WithDescription("Start codegen"),
		mcpgo.WithObject("options", mcpgo.Required()),
	), func(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
		rec.record(ToolStartCodegen, req.GetArguments())
		return mcpgo.NewToolResultText(`{"sessionId":"sess-42","message":"started"}`), nil
	})
	s.AddTool(mcpgo.NewTool(ToolEndCodegen,
		mcpgo.WithDescription("End codegen"),
		mcpgo.WithString("sessionId", mcpgo.Required()),
	), echo(ToolEndCodegen))
	s.AddTool(mcpgo.NewTool(ToolClose,
		mcpgo.WithDescription("Close the browser"),
		mcpgo.WithString("random_string"),
	), echo(ToolClose))
	return s
}

func inProcessDialer(s *server.MCPServer) Dialer {
	return func(ctx context.Context, _ string, _ config.MCPServer) (*client.Client, error) {
		cli, err := client.NewInProcessClient(s)
		if err != nil {
			return nil, err
		}
		if err := cli.Start(ctx); err != nil {
			return nil, err
		}
		return cli, nil
	}
}

func TestPlaywright_NamedOperations(t *testing.T) {
	rec := &recorder{}
	p := NewPlaywright(config.MCPServer{Type: "sse", URL: "http://127.0.0.1:1/sse"}, inProcessDialer(fakePlaywrightServer(rec)))
	ctx := context.Background()
	assert.False(t, p.Initialized())

	out, err := p.Navigate(ctx, "https://example.com")
	require.NoError(t, err)
	assert.True(t, p.Initialized(), "first call connects")
	assert.Equal(t, "✅ 成功导航到: https://example.com\nNavigated to https://example.com", out)
	assert.Equal(t, "https://example.com", rec.args(ToolNavigate)["url"])

	_, err = p.Fill(ctx, "#q", "eino")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"selector": "#q", "value": "eino"}, rec.args(ToolFill))

	text, err := p.VisibleText(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, ToolVisibleText+" ok")
	assert.Equal(t, "dummy", rec.args(ToolVisibleText)["random_string"])

	_, err = p.PressKey(ctx, "Enter", "")
	require.NoError(t, err)
	assert.NotContains(t, rec.args(ToolPressKey), "selector")

	names, err := p.ToolNames(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, ToolNavigate)
	assert.IsIncreasing(t, names)
}

func TestPlaywright_UnknownTool(t *testing.T) {
	p := NewPlaywright(config.MCPServer{}, inProcessDialer(fakePlaywrightServer(&recorder{})))

	_, err := p.Hover(context.Background(), "#menu")
	require.Error(t, err)
	assert.True(t, IsToolNotFound(err))

	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr))
	assert.Equal(t, ToolHover, mcpErr.Tool)
}

func TestPlaywright_CodegenSession(t *testing.T) {
	rec := &recorder{}
	p := NewPlaywright(config.MCPServer{}, inProcessDialer(fakePlaywrightServer(rec)))
	ctx := context.Background()

	_, err := p.EndCodegen(ctx)
	assert.ErrorIs(t, err, ErrNoCodegenSession)

	_, err = p.StartCodegen(ctx, "./tests", "")
	require.NoError(t, err)
	assert.Equal(t, "sess-42", p.SessionID())

	opts, ok := rec.args(ToolStartCodegen)["options"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "./tests", opts["outputPath"])
	assert.Equal(t, "GeneratedTest", opts["testNamePrefix"])
	assert.Equal(t, true, opts["includeComments"])

	_, err = p.EndCodegen(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sess-42", rec.args(ToolEndCodegen)["sessionId"])
	assert.Empty(t, p.SessionID())
}

func TestPlaywright_Close(t *testing.T) {
	rec := &recorder{}
	p := NewPlaywright(config.MCPServer{}, inProcessDialer(fakePlaywrightServer(rec)))
	ctx := context.Background()

	require.NoError(t, p.Close(ctx), "closing an unused session is a no-op")
	assert.Nil(t, rec.args(ToolClose))

	require.NoError(t, p.Initialize(ctx))
	require.NoError(t, p.Close(ctx))
	assert.Equal(t, "dummy", rec.args(ToolClose)["random_string"])
	assert.False(t, p.Initialized())
}

func TestPlaywright_DialFailure(t *testing.T) {
	boom := errors.New("spawn failed")
	p := NewPlaywright(config.MCPServer{}, func(context.Context, string, config.MCPServer) (*client.Client, error) {
		return nil, boom
	})

	_, err := p.Navigate(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))
	assert.False(t, p.Initialized())
}

func TestResultText(t *testing.T) {
	raw := `{"content":[{"type":"text","text":"a"},{"type":"image","data":"xx"},{"type":"text","text":"b"}]}`
	assert.Equal(t, "a\nb", ResultText(raw))
	assert.Equal(t, "plain", ResultText("plain"))
	assert.Equal(t, `{"x":1}`, ResultText(`{"x":1}`))
}

func TestSessionIDFrom(t *testing.T) {
	assert.Equal(t, "top", sessionIDFrom(`{"sessionId":"top"}`))
	assert.Equal(t, "inner", sessionIDFrom(`{"content":[{"type":"text","text":"{\"sessionId\":\"inner\"}"}]}`))
	assert.Empty(t, sessionIDFrom(`{"content":[{"type":"text","text":"no session"}]}`))
	assert.Empty(t, sessionIDFrom("not json"))
}

func TestManager_ToolsArePrefixed(t *testing.T) {
	servers := map[string]config.MCPServer{
		"pw":  {Type: "sse", URL: "http://127.0.0.1:1/sse"},
		"pw2": {Type: "streamable-http", URL: "http://127.0.0.1:1/mcp"},
	}
	m := NewManager(servers, WithDialer(inProcessDialer(fakePlaywrightServer(&recorder{}))))
	ctx := context.Background()

	_, err := m.ToolsForServers([]string{"pw"})
	assert.ErrorIs(t, err, ErrMCPNotInitialized)

	require.NoError(t, m.Initialize(ctx))
	defer m.Close()

	all := m.Tools()
	require.NotEmpty(t, all)
	first, err := all[0].Info(ctx)
	require.NoError(t, err)
	assert.Regexp(t, `^pw2?_playwright_`, first.Name)

	only, err := m.ToolsForServers([]string{"pw"})
	require.NoError(t, err)
	assert.Len(t, all, 2*len(only))
	for _, bt := range only {
		info, err := bt.Info(ctx)
		require.NoError(t, err)
		assert.Regexp(t, `^pw_playwright_`, info.Name)
	}

	_, err = m.ToolsForServers([]string{"missing"})
	assert.ErrorIs(t, err, ErrServerNotFound)
}

func TestManager_InitializeFailsOnBadConfig(t *testing.T) {
	m := NewManager(map[string]config.MCPServer{"bad": {Type: "websocket", URL: "ws://x"}})
	err := m.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestManager_ConnectFailureClosesEverything(t *testing.T) {
	calls := 0
	m := NewManager(map[string]config.MCPServer{
		"a": {Type: "sse", URL: "http://127.0.0.1:1/a"},
		"b": {Type: "sse", URL: "http://127.0.0.1:1/b"},
	}, WithDialer(func(ctx context.Context, name string, s config.MCPServer) (*client.Client, error) {
		calls++
		if name == "b" {
			return nil, fmt.Errorf("refused")
		}
		return inProcessDialer(fakePlaywrightServer(&recorder{}))(ctx, name, s)
	}))

	err := m.Initialize(context.Background())
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))
	assert.Equal(t, 2, calls)
	assert.Empty(t, m.Tools())
}

func TestValidateServers(t *testing.T) {
	cases := []struct {
		name    string
		server  config.MCPServer
		wantErr bool
	}{
		{"stdio", config.MCPServer{Type: "stdio", Cmd: "sh"}, false},
		{"default type is stdio", config.MCPServer{Cmd: "/usr/local/bin/server"}, false},
		{"stdio without cmd", config.MCPServer{Type: "stdio"}, true},
		{"stdio with url", config.MCPServer{Cmd: "sh", URL: "http://x"}, true},
		{"missing command", config.MCPServer{Cmd: "definitely-not-a-command-xyz"}, true},
		{"sse", config.MCPServer{Type: "SSE", URL: "https://example.com/sse"}, false},
		{"http alias", config.MCPServer{Type: "http", URL: "http://localhost:8080/mcp"}, false},
		{"sse without url", config.MCPServer{Type: "sse"}, true},
		{"bad scheme", config.MCPServer{Type: "sse", URL: "ftp://example.com"}, true},
		{"unknown type", config.MCPServer{Type: "grpc", URL: "http://x"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateServer("s", tc.server)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}

	err := ValidateServers(
		map[string]config.MCPServer{"pw": {Type: "sse", URL: "http://localhost/sse"}},
		map[string]config.Agent{"a": {MCPServers: []string{"other"}}},
	)
	assert.ErrorIs(t, err, ErrServerNotFound)
}
