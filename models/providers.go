package models

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino-ext/components/model/qianfan"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	"github.com/cloudwego/eino/components/model"

	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/llm"
)

// sampling holds the optional generation parameters of a model entry.
// Zero values in the config mean "provider default" and stay nil.
type sampling struct {
	maxTokens   *int
	temperature *float32
	topP        *float32
}

func samplingOf(m *config.Model) sampling {
	var s sampling
	if m.MaxTokens > 0 {
		n := m.MaxTokens
		s.maxTokens = &n
	}
	if m.Temperature > 0 {
		t := float32(m.Temperature)
		s.temperature = &t
	}
	if m.TopP > 0 {
		p := float32(m.TopP)
		s.topP = &p
	}
	return s
}

func (s sampling) maxTokensValue() int {
	if s.maxTokens == nil {
		return 0
	}
	return *s.maxTokens
}

func deref(p *float32) float32 {
	if p == nil {
		return 0
	}
	return *p
}

type providerFunc func(ctx context.Context, m *config.Model, p *config.Provider, s sampling) (model.ToolCallingChatModel, error)

var providers = map[string]providerFunc{
	"siliconflow": newSiliconFlowModel,
	"openai":      newOpenAIModel,
	"claude":      newClaudeModel,
	"gemini":      newGeminiModel,
	"qwen":        newQwenModel,
	"qianfan":     newQianfanModel,
	"ark":         newArkModel,
	"deepseek":    newDeepSeekModel,
	"ollama":      newOllamaModel,
}

// newSiliconFlowModel builds our own chat completions client against the provider endpoint
func newSiliconFlowModel(_ context.Context, m *config.Model, p *config.Provider, s sampling) (model.ToolCallingChatModel, error) {
	cfg := config.LLM{
		APIKey:      p.APIKey,
		BaseURL:     p.BaseURL,
		Model:       m.Model,
		Temperature: config.DefaultTemperature,
		MaxTokens:   config.DefaultMaxTokens,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultBaseURL
	}
	if s.temperature != nil {
		cfg.Temperature = float64(*s.temperature)
	}
	if s.maxTokens != nil {
		cfg.MaxTokens = *s.maxTokens
	}
	return llm.NewChatModel(cfg)
}

func newOpenAIModel(ctx context.Context, m *config.Model, p *config.Provider, s sampling) (model.ToolCallingChatModel, error) {
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:       m.Model,
		BaseURL:     p.BaseURL,
		APIKey:      p.APIKey,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		TopP:        s.topP,
	})
}

func newClaudeModel(ctx context.Context, m *config.Model, p *config.Provider, s sampling) (model.ToolCallingChatModel, error) {
	cfg := &claude.Config{
		Model:       m.Model,
		APIKey:      p.APIKey,
		MaxTokens:   s.maxTokensValue(),
		Temperature: s.temperature,
		TopP:        s.topP,
	}
	if p.BaseURL != "" {
		baseURL := p.BaseURL
		cfg.BaseURL = &baseURL
	}
	return claude.NewChatModel(ctx, cfg)
}

func newGeminiModel(ctx context.Context, m *config.Model, _ *config.Provider, s sampling) (model.ToolCallingChatModel, error) {
	return gemini.NewChatModel(ctx, &gemini.Config{
		Model:       m.Model,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		TopP:        s.topP,
	})
}

func newQwenModel(ctx context.Context, m *config.Model, p *config.Provider, s sampling) (model.ToolCallingChatModel, error) {
	return qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
		Model:       m.Model,
		BaseURL:     p.BaseURL,
		APIKey:      p.APIKey,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		TopP:        s.topP,
	})
}

// Qianfan reads its credentials from the environment
func newQianfanModel(ctx context.Context, m *config.Model, _ *config.Provider, _ sampling) (model.ToolCallingChatModel, error) {
	return qianfan.NewChatModel(ctx, &qianfan.ChatModelConfig{
		Model: m.Model,
	})
}

func newArkModel(ctx context.Context, m *config.Model, p *config.Provider, s sampling) (model.ToolCallingChatModel, error) {
	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		Model:       m.Model,
		BaseURL:     p.BaseURL,
		APIKey:      p.APIKey,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		TopP:        s.topP,
	})
}

func newDeepSeekModel(ctx context.Context, m *config.Model, p *config.Provider, s sampling) (model.ToolCallingChatModel, error) {
	return deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
		Model:       m.Model,
		BaseURL:     p.BaseURL,
		APIKey:      p.APIKey,
		MaxTokens:   s.maxTokensValue(),
		Temperature: deref(s.temperature),
		TopP:        deref(s.topP),
	})
}

// Ollama sampling is configured through its Options field, which we leave to the server defaults
func newOllamaModel(ctx context.Context, m *config.Model, p *config.Provider, _ sampling) (model.ToolCallingChatModel, error) {
	return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		Model:   m.Model,
		BaseURL: p.BaseURL,
	})
}
