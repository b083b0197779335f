package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tk103331/eino-browser-demo/config"
)

var emptyParameters = json.RawMessage(`{"type":"object","properties":{}}`)

// ChatModel adapts Client to eino's model.ToolCallingChatModel
type ChatModel struct {
	client *Client
	tools  []Tool
}

var _ model.ToolCallingChatModel = (*ChatModel)(nil)

// NewChatModel creates a ChatModel for cfg
func NewChatModel(cfg config.LLM, opts ...Option) (*ChatModel, error) {
	c, err := NewClient(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewChatModelFromClient(c), nil
}

// NewChatModelFromClient wraps an existing client
func NewChatModelFromClient(c *Client) *ChatModel {
	return &ChatModel{client: c}
}

// GetType reports the component type shown in callbacks
func (m *ChatModel) GetType() string {
	return "SiliconFlow"
}

// Generate implements model.BaseChatModel
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	req, err := m.buildRequest(input, opts...)
	if err != nil {
		return nil, err
	}
	resp, err := m.client.Chat(ctx, req)
	if err != nil {
		return nil, err
	}

	out := fromMessage(resp.Message)
	out.Role = schema.Assistant
	out.ResponseMeta = responseMeta(resp.FinishReason, resp.Usage)
	return out, nil
}

// Stream implements model.BaseChatModel
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	req, err := m.buildRequest(input, opts...)
	if err != nil {
		return nil, err
	}
	stream, err := m.client.Stream(ctx, req)
	if err != nil {
		return nil, err
	}

	sr, sw := schema.Pipe[*schema.Message](1)
	go func() {
		defer sw.Close()
		defer stream.Close()

		for {
			delta, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				sw.Send(nil, err)
				return
			}

			msg := &schema.Message{
				Role:         schema.Assistant,
				Content:      delta.Content,
				ToolCalls:    toSchemaToolCalls(delta.ToolCalls),
				ResponseMeta: responseMeta(delta.FinishReason, delta.Usage),
			}
			if closed := sw.Send(msg, nil); closed {
				return
			}
		}
	}()
	return sr, nil
}

// WithTools implements model.ToolCallingChatModel. The receiver is not modified.
func (m *ChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	converted, err := toTools(tools)
	if err != nil {
		return nil, err
	}
	return &ChatModel{client: m.client, tools: converted}, nil
}

func (m *ChatModel) buildRequest(input []*schema.Message, opts ...model.Option) (*Request, error) {
	cfg := m.client.Config()
	temperature := float32(cfg.Temperature)
	maxTokens := cfg.MaxTokens
	modelName := cfg.Model

	options := model.GetCommonOptions(&model.Options{
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Model:       &modelName,
	}, opts...)

	req := m.client.NewRequest(toMessages(input)...)
	if options.Model != nil {
		req.Model = *options.Model
	}
	if options.Temperature != nil {
		req.Temperature = float64(*options.Temperature)
	}
	if options.MaxTokens != nil {
		req.MaxTokens = *options.MaxTokens
	}
	if options.TopP != nil {
		topP := float64(*options.TopP)
		req.TopP = &topP
	}
	req.Stop = options.Stop

	req.Tools = m.tools
	if len(options.Tools) > 0 {
		tools, err := toTools(options.Tools)
		if err != nil {
			return nil, err
		}
		req.Tools = tools
	}
	return req, nil
}

func toMessages(in []*schema.Message) []Message {
	out := make([]Message, 0, len(in))
	for _, m := range in {
		if m == nil {
			continue
		}
		msg := Message{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		if m.Role == schema.Tool && msg.Name == "" {
			msg.Name = m.ToolName
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ToolCall{
				ID:   tc.ID,
				Type: "function",
				Function: FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func fromMessage(m Message) *schema.Message {
	return &schema.Message{
		Role:       schema.RoleType(m.Role),
		Content:    m.Content,
		Name:       m.Name,
		ToolCallID: m.ToolCallID,
		ToolCalls:  toSchemaToolCalls(m.ToolCalls),
	}
}

func toSchemaToolCalls(calls []ToolCall) []schema.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]schema.ToolCall, 0, len(calls))
	for _, tc := range calls {
		typ := tc.Type
		if typ == "" {
			typ = "function"
		}
		out = append(out, schema.ToolCall{
			Index: tc.Index,
			ID:    tc.ID,
			Type:  typ,
			Function: schema.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		})
	}
	return out
}

func toTools(infos []*schema.ToolInfo) ([]Tool, error) {
	if len(infos) == 0 {
		return nil, nil
	}
	out := make([]Tool, 0, len(infos))
	for _, info := range infos {
		if info == nil {
			continue
		}
		params := emptyParameters
		if info.ParamsOneOf != nil {
			js, err := info.ParamsOneOf.ToJSONSchema()
			if err != nil {
				return nil, fmt.Errorf("convert parameters of tool %s: %w", info.Name, err)
			}
			if js != nil {
				b, err := json.Marshal(js)
				if err != nil {
					return nil, fmt.Errorf("marshal parameters of tool %s: %w", info.Name, err)
				}
				params = b
			}
		}
		out = append(out, Tool{
			Type: "function",
			Function: FunctionDef{
				Name:        info.Name,
				Description: info.Desc,
				Parameters:  params,
			},
		})
	}
	return out, nil
}

func responseMeta(finishReason string, usage *Usage) *schema.ResponseMeta {
	if finishReason == "" && usage == nil {
		return nil
	}
	meta := &schema.ResponseMeta{FinishReason: finishReason}
	if usage != nil {
		meta.Usage = &schema.TokenUsage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		}
	}
	return meta
}
