package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/logger"
)

// ModelFactory creates chat models by configured name
type ModelFactory interface {
	CreateChatModel(ctx context.Context, name string) (model.ToolCallingChatModel, error)
}

// ToolSource resolves configured tool names
type ToolSource interface {
	Tools(ctx context.Context, names []string) ([]tool.BaseTool, error)
}

// MCPToolSource returns the tools of the named MCP servers
type MCPToolSource interface {
	ToolsForServers(names []string) ([]tool.BaseTool, error)
}

// ToolEvent reports a tool call made by the agent
type ToolEvent struct {
	Name      string
	Arguments string
	Result    string
	Err       error
	Done      bool
}

// ToolCallCallback forwards tool node callbacks as ToolEvents
type ToolCallCallback struct {
	callback func(ToolEvent)
}

func (t *ToolCallCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if info == nil || info.Component != components.ComponentOfTool {
		return ctx
	}
	ev := ToolEvent{Name: info.Name}
	if in := tool.ConvCallbackInput(input); in != nil {
		ev.Arguments = in.ArgumentsInJSON
	}
	t.callback(ev)
	return ctx
}

func (t *ToolCallCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if info == nil || info.Component != components.ComponentOfTool {
		return ctx
	}
	ev := ToolEvent{Name: info.Name, Done: true}
	if out := tool.ConvCallbackOutput(output); out != nil {
		ev.Result = out.Response
	}
	t.callback(ev)
	return ctx
}

func (t *ToolCallCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if info == nil || info.Component != components.ComponentOfTool {
		return ctx
	}
	t.callback(ToolEvent{Name: info.Name, Err: err, Done: true})
	return ctx
}

func (t *ToolCallCallback) OnStartWithStreamInput(ctx context.Context, _ *callbacks.RunInfo, input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	input.Close()
	return ctx
}

func (t *ToolCallCallback) OnEndWithStreamOutput(ctx context.Context, _ *callbacks.RunInfo, output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	output.Close()
	return ctx
}

// ReactAgent 基于 eino react 的Agent，工具来自工具注册表和MCP服务器
type ReactAgent struct {
	name   string
	config config.Agent
	models ModelFactory
	tools  ToolSource
	mcp    MCPToolSource

	agent *react.Agent
}

// NewReactAgent 创建Agent，首次调用时才构建
func NewReactAgent(name string, cfg config.Agent, models ModelFactory, tools ToolSource, mcp MCPToolSource) *ReactAgent {
	return &ReactAgent{
		name:   name,
		config: cfg,
		models: models,
		tools:  tools,
		mcp:    mcp,
	}
}

// Init 创建模型与工具
func (r *ReactAgent) Init(ctx context.Context) error {
	if r.agent != nil {
		return nil
	}

	m, err := r.models.CreateChatModel(ctx, r.config.Model)
	if err != nil {
		return fmt.Errorf("创建模型失败: %w", err)
	}

	var all []tool.BaseTool
	if len(r.config.Tools) > 0 {
		if r.tools == nil {
			return fmt.Errorf("agent %s 配置了工具，但没有工具注册表", r.name)
		}
		ts, err := r.tools.Tools(ctx, r.config.Tools)
		if err != nil {
			return fmt.Errorf("创建工具失败: %w", err)
		}
		all = append(all, ts...)
	}
	if len(r.config.MCPServers) > 0 {
		if r.mcp == nil {
			return fmt.Errorf("agent %s 配置了MCP服务器，但MCP未初始化", r.name)
		}
		ts, err := r.mcp.ToolsForServers(r.config.MCPServers)
		if err != nil {
			return fmt.Errorf("获取MCP工具失败: %w", err)
		}
		all = append(all, ts...)
	}

	a, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: m,
		ToolsConfig:      compose.ToolsNodeConfig{Tools: all},
	})
	if err != nil {
		return fmt.Errorf("创建Agent失败: %w", err)
	}
	r.agent = a
	logger.Info("AGENT", fmt.Sprintf("agent %s ready with %d tools", r.name, len(all)))
	return nil
}

func (r *ReactAgent) messages(history []*schema.Message) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history)+1)
	if r.config.System != "" {
		msgs = append(msgs, schema.SystemMessage(r.config.System))
	}
	return append(msgs, history...)
}

// Chat 同步对话，返回最终回复
func (r *ReactAgent) Chat(ctx context.Context, prompt string) (string, error) {
	if err := r.Init(ctx); err != nil {
		return "", err
	}
	resp, err := r.agent.Generate(ctx, r.messages([]*schema.Message{schema.UserMessage(prompt)}))
	if err != nil {
		return "", fmt.Errorf("Chat失败: %w", err)
	}
	return resp.Content, nil
}

// Stream 流式对话，onChunk 接收内容片段，onTool 接收工具调用事件，二者都可以为 nil
func (r *ReactAgent) Stream(ctx context.Context, prompt string, onChunk func(string), onTool func(ToolEvent)) (string, error) {
	return r.StreamHistory(ctx, []*schema.Message{schema.UserMessage(prompt)}, onChunk, onTool)
}

// StreamHistory 与 Stream 相同，但接收完整的对话历史（不含系统提示）
func (r *ReactAgent) StreamHistory(ctx context.Context, history []*schema.Message, onChunk func(string), onTool func(ToolEvent)) (string, error) {
	if err := r.Init(ctx); err != nil {
		return "", err
	}

	var opts []agent.AgentOption
	if onTool != nil {
		opts = append(opts, agent.WithComposeOptions(compose.WithCallbacks(&ToolCallCallback{callback: onTool})))
	}

	sr, err := r.agent.Stream(ctx, r.messages(history), opts...)
	if err != nil {
		return "", fmt.Errorf("Stream失败: %w", err)
	}
	defer sr.Close()

	var result strings.Builder
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("接收流消息失败: %w", err)
		}
		if msg.Content == "" {
			continue
		}
		if onChunk != nil {
			onChunk(msg.Content)
		}
		result.WriteString(msg.Content)
	}
	return result.String(), nil
}
