// Package mcp connects to Model Context Protocol servers and exposes their
// tools to eino.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/mark3labs/mcp-go/client"

	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/logger"
)

// Manager MCP管理器，负责管理所有MCP客户端和工具
type Manager struct {
	mu          sync.RWMutex
	servers     map[string]config.MCPServer
	dial        Dialer
	initialized bool
	clients     map[string]*client.Client
	// 工具名格式: serverName_toolName
	tools map[string]tool.InvokableTool
	owner map[string]string
}

// ManagerOption customises a Manager
type ManagerOption func(*Manager)

// WithDialer replaces the transport used to reach servers
func WithDialer(d Dialer) ManagerOption {
	return func(m *Manager) {
		m.dial = d
	}
}

// NewManager 创建新的MCP管理器，不会立即连接
func NewManager(servers map[string]config.MCPServer, opts ...ManagerOption) *Manager {
	m := &Manager{
		servers: servers,
		dial:    Dial,
		clients: make(map[string]*client.Client),
		tools:   make(map[string]tool.InvokableTool),
		owner:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize 连接所有服务器并发现工具，已初始化时直接返回
func (m *Manager) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if err := ValidateServers(m.servers, nil); err != nil {
		return NewMCPError("initialize", "", "", fmt.Errorf("配置验证失败: %w", err))
	}

	names := make([]string, 0, len(m.servers))
	for name := range m.servers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := m.connect(ctx, name, m.servers[name]); err != nil {
			m.closeLocked()
			return err
		}
	}

	m.initialized = true
	logger.Info("MCP", fmt.Sprintf("initialized %d servers, %d tools", len(m.clients), len(m.tools)))
	return nil
}

func (m *Manager) connect(ctx context.Context, name string, server config.MCPServer) error {
	cli, err := m.dial(ctx, name, server)
	if err != nil {
		return NewMCPError("connect", name, "", fmt.Errorf("%w: %v", ErrConnectionFailed, err))
	}
	m.clients[name] = cli

	if _, err := initSession(ctx, cli); err != nil {
		return NewMCPError("connect", name, "", err)
	}

	remote, err := loadTools(ctx, cli)
	if err != nil {
		return NewMCPError("discover", name, "", err)
	}
	for _, rt := range remote {
		full := fmt.Sprintf("%s_%s", name, rt.name)
		m.tools[full] = &namedTool{name: full, InvokableTool: rt.tool}
		m.owner[full] = name
		logger.Debug("MCP", fmt.Sprintf("registered tool %s", full))
	}
	return nil
}

// Tools 返回所有MCP工具，按名称排序
func (m *Manager) Tools() []tool.BaseTool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.collect(func(string) bool { return true })
}

// ToolsForServers 返回指定服务器的工具
func (m *Manager) ToolsForServers(names []string) ([]tool.BaseTool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(names) == 0 {
		return nil, nil
	}
	if !m.initialized {
		return nil, NewMCPError("get_tools", "", "", ErrMCPNotInitialized)
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := m.servers[name]; !ok {
			return nil, NewMCPError("get_tools", name, "", ErrServerNotFound)
		}
		wanted[name] = true
	}
	return m.collect(func(server string) bool { return wanted[server] }), nil
}

func (m *Manager) collect(keep func(server string) bool) []tool.BaseTool {
	names := make([]string, 0, len(m.tools))
	for name := range m.tools {
		if keep(m.owner[name]) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]tool.BaseTool, 0, len(names))
	for _, name := range names {
		out = append(out, m.tools[name])
	}
	return out
}

// Close 关闭所有MCP客户端连接
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closeLocked()
}

func (m *Manager) closeLocked() error {
	var errs []error
	for name, cli := range m.clients {
		if err := cli.Close(); err != nil {
			errs = append(errs, fmt.Errorf("关闭MCP客户端 %s 失败: %w", name, err))
		}
	}
	m.clients = make(map[string]*client.Client)
	m.tools = make(map[string]tool.InvokableTool)
	m.owner = make(map[string]string)
	m.initialized = false
	return errors.Join(errs...)
}

// namedTool reports a server-prefixed name so tools from different servers don't collide
type namedTool struct {
	name string
	tool.InvokableTool
}

func (t *namedTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	info, err := t.InvokableTool.Info(ctx)
	if err != nil {
		return nil, err
	}
	renamed := *info
	renamed.Name = t.name
	return &renamed, nil
}
