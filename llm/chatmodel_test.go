package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatModel_GenerateAppliesOptions(t *testing.T) {
	var got Request
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`)
	})
	m := NewChatModelFromClient(c)

	out, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("你是一个助手"),
		schema.UserMessage("hi"),
	}, model.WithTemperature(0.1), model.WithMaxTokens(42), model.WithModel("Qwen/Qwen2.5-7B-Instruct"))
	require.NoError(t, err)

	assert.Equal(t, "ok", out.Content)
	assert.Equal(t, schema.Assistant, out.Role)
	require.NotNil(t, out.ResponseMeta)
	assert.Equal(t, "stop", out.ResponseMeta.FinishReason)
	assert.Equal(t, 4, out.ResponseMeta.Usage.TotalTokens)

	assert.Equal(t, "Qwen/Qwen2.5-7B-Instruct", got.Model)
	assert.InDelta(t, 0.1, got.Temperature, 1e-6)
	assert.Equal(t, 42, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestChatModel_WithToolsSendsDefinitions(t *testing.T) {
	var got map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"","tool_calls":[{"id":"call_1","type":"function","function":{"name":"browser_navigate","arguments":"{}"}}]},"finish_reason":"tool_calls"}]}`)
	})
	base := NewChatModelFromClient(c)

	withTools, err := base.WithTools([]*schema.ToolInfo{{
		Name: "browser_navigate",
		Desc: "导航到指定网址",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"url": {Type: schema.String, Desc: "网址", Required: true},
		}),
	}})
	require.NoError(t, err)
	assert.Empty(t, base.tools, "WithTools must not modify the receiver")

	out, err := withTools.Generate(context.Background(), []*schema.Message{schema.UserMessage("open")})
	require.NoError(t, err)
	require.Len(t, out.ToolCalls, 1)
	assert.Equal(t, "call_1", out.ToolCalls[0].ID)

	tools, ok := got["tools"].([]any)
	require.True(t, ok)
	require.Len(t, tools, 1)
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	assert.Equal(t, "browser_navigate", fn["name"])
	params := fn["parameters"].(map[string]any)
	assert.Equal(t, "object", params["type"])
	assert.Contains(t, params["properties"], "url")
}

func TestChatModel_ToolMessagesRoundTrip(t *testing.T) {
	var got Request
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"done"}}]}`)
	})
	m := NewChatModelFromClient(c)

	_, err := m.Generate(context.Background(), []*schema.Message{
		schema.UserMessage("open"),
		schema.AssistantMessage("", []schema.ToolCall{{ID: "call_1", Function: schema.FunctionCall{Name: "browser_navigate", Arguments: `{"url":"x"}`}}}),
		schema.ToolMessage("✅ ok", "call_1", schema.WithToolName("browser_navigate")),
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 3)
	assert.Equal(t, "function", got.Messages[1].ToolCalls[0].Type)
	assert.Equal(t, "tool", got.Messages[2].Role)
	assert.Equal(t, "call_1", got.Messages[2].ToolCallID)
	assert.Equal(t, "browser_navigate", got.Messages[2].Name)
}

func TestChatModel_StreamConcatenates(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		lines := []string{
			`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
			`data: {"choices":[{"delta":{"content":"lo"}}]}`,
			`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"wait","arguments":"{\"sec"}}]}}]}`,
			`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"onds\":1}"}}]}}]}`,
			`data: {"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`,
			"data: [DONE]",
		}
		_, _ = io.WriteString(w, strings.Join(lines, "\n\n")+"\n\n")
	})
	m := NewChatModelFromClient(c)

	sr, err := m.Stream(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	require.NoError(t, err)
	defer sr.Close()

	var chunks []*schema.Message
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}

	full, err := schema.ConcatMessages(chunks)
	require.NoError(t, err)
	assert.Equal(t, "Hello", full.Content)
	require.Len(t, full.ToolCalls, 1)
	assert.Equal(t, "wait", full.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"seconds":1}`, full.ToolCalls[0].Function.Arguments)
	assert.Equal(t, "tool_calls", full.ResponseMeta.FinishReason)
}
