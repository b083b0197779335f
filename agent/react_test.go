package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tk103331/eino-browser-demo/config"
)

// scriptedModel asks for the echo tool once, then answers with the tool result
type scriptedModel struct {
	mu     sync.Mutex
	system string
}

func (m *scriptedModel) reply(in []*schema.Message) *schema.Message {
	m.mu.Lock()
	if in[0].Role == schema.System {
		m.system = in[0].Content
	}
	m.mu.Unlock()

	last := in[len(in)-1]
	if last.Role == schema.Tool {
		return schema.AssistantMessage("done: "+last.Content, nil)
	}
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       "call-1",
		Type:     "function",
		Function: schema.FunctionCall{Name: "echo", Arguments: `{"text":"hi"}`},
	}})
}

func (m *scriptedModel) Generate(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	return m.reply(in), nil
}

func (m *scriptedModel) Stream(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return schema.StreamReaderFromArray([]*schema.Message{m.reply(in)}), nil
}

func (m *scriptedModel) WithTools([]*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}

type staticModels struct {
	m   model.ToolCallingChatModel
	err error
}

func (s staticModels) CreateChatModel(context.Context, string) (model.ToolCallingChatModel, error) {
	return s.m, s.err
}

type echoInput struct {
	Text string `json:"text"`
}

type staticTools struct{}

func (staticTools) Tools(_ context.Context, names []string) ([]tool.BaseTool, error) {
	echo, err := utils.InferTool("echo", "echo text", func(_ context.Context, in echoInput) (string, error) {
		return "echo " + in.Text, nil
	})
	if err != nil {
		return nil, err
	}
	return []tool.BaseTool{echo}, nil
}

type missingMCP struct{}

func (missingMCP) ToolsForServers([]string) ([]tool.BaseTool, error) {
	return nil, errors.New("MCP server not found")
}

func TestReactAgent_Chat(t *testing.T) {
	m := &scriptedModel{}
	f := NewFactory(map[string]config.Agent{
		"helper": {System: "你是助手", Model: "default", Tools: []string{"echo"}},
	}, staticModels{m: m}, staticTools{}, nil)

	a, err := f.CreateAgent("helper")
	require.NoError(t, err)

	out, err := a.Chat(context.Background(), "say hi")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "done: "))
	assert.Contains(t, out, "echo hi")
	assert.Equal(t, "你是助手", m.system)
}

func TestReactAgent_StreamReportsToolEvents(t *testing.T) {
	a := NewReactAgent("helper", config.Agent{Tools: []string{"echo"}}, staticModels{m: &scriptedModel{}}, staticTools{}, nil)

	var chunks []string
	var mu sync.Mutex
	var events []ToolEvent
	out, err := a.Stream(context.Background(), "say hi",
		func(s string) { chunks = append(chunks, s) },
		func(ev ToolEvent) {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, ev)
		})
	require.NoError(t, err)
	assert.Contains(t, out, "echo hi")
	assert.Equal(t, out, strings.Join(chunks, ""))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, events)
	assert.Equal(t, "echo", events[0].Name)
}

func TestReactAgent_InitErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewFactory(nil, staticModels{}, nil, nil).CreateAgent("nope")
	assert.ErrorContains(t, err, "Agent配置不存在")

	boom := errors.New("model config missing")
	a := NewReactAgent("a", config.Agent{}, staticModels{err: boom}, nil, nil)
	assert.ErrorIs(t, a.Init(ctx), boom)

	a = NewReactAgent("a", config.Agent{MCPServers: []string{"pw"}}, staticModels{m: &scriptedModel{}}, nil, nil)
	assert.ErrorContains(t, a.Init(ctx), "MCP未初始化")

	a = NewReactAgent("a", config.Agent{MCPServers: []string{"pw"}}, staticModels{m: &scriptedModel{}}, nil, missingMCP{})
	assert.ErrorContains(t, a.Init(ctx), "获取MCP工具失败")

	a = NewReactAgent("a", config.Agent{Tools: []string{"x"}}, staticModels{m: &scriptedModel{}}, nil, nil)
	assert.ErrorContains(t, a.Init(ctx), "没有工具注册表")
}

func TestFactory_Names(t *testing.T) {
	f := NewFactory(map[string]config.Agent{"b": {}, "a": {}}, staticModels{}, nil, nil)
	assert.Equal(t, []string{"a", "b"}, f.Names())
}

func TestReactAgent_StreamHistoryKeepsTurns(t *testing.T) {
	m := &scriptedModel{}
	a := NewReactAgent("helper", config.Agent{System: "sys", Tools: []string{"echo"}}, staticModels{m: m}, staticTools{}, nil)

	history := []*schema.Message{
		schema.UserMessage("first"),
		schema.AssistantMessage("ok", nil),
		schema.UserMessage("say hi"),
	}
	out, err := a.StreamHistory(context.Background(), history, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "echo hi")
	assert.Equal(t, "sys", m.system)
	assert.Len(t, history, 3, "caller history is not modified")
}
