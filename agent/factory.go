package agent

import (
	"fmt"
	"sort"

	"github.com/tk103331/eino-browser-demo/config"
)

// Factory 根据配置创建Agent
type Factory struct {
	agents map[string]config.Agent
	models ModelFactory
	tools  ToolSource
	mcp    MCPToolSource
}

// NewFactory mcp may be nil when no agent uses MCP servers
func NewFactory(agents map[string]config.Agent, models ModelFactory, tools ToolSource, mcp MCPToolSource) *Factory {
	return &Factory{agents: agents, models: models, tools: tools, mcp: mcp}
}

// CreateAgent 根据名称创建Agent
func (f *Factory) CreateAgent(name string) (*ReactAgent, error) {
	cfg, ok := f.agents[name]
	if !ok {
		return nil, fmt.Errorf("Agent配置不存在: %s", name)
	}
	return NewReactAgent(name, cfg, f.models, f.tools, f.mcp), nil
}

// Names lists the configured agents
func (f *Factory) Names() []string {
	names := make([]string, 0, len(f.agents))
	for name := range f.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
