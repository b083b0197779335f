package models

import (
	"context"
	"fmt"
	"sort"

	"github.com/cloudwego/eino/components/model"

	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/llm"
)

// DefaultModelName selects the model described by the llm section
const DefaultModelName = "default"

// Factory is used to create ChatModel for different providers
type Factory struct {
	cfg *config.Config
}

// NewFactory creates a new Factory
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{cfg: cfg}
}

// CreateChatModel creates corresponding ChatModel based on model name.
// An empty name or "default" uses the SiliconFlow settings of the llm section.
func (f *Factory) CreateChatModel(ctx context.Context, modelName string) (model.ToolCallingChatModel, error) {
	if modelName == "" || modelName == DefaultModelName {
		return llm.NewChatModel(f.cfg.LLM)
	}

	modelCfg, ok := f.cfg.Models[modelName]
	if !ok {
		return nil, fmt.Errorf("model configuration does not exist: %s", modelName)
	}

	providerCfg, ok := f.cfg.Providers[modelCfg.Provider]
	if !ok {
		return nil, fmt.Errorf("provider configuration does not exist: %s", modelCfg.Provider)
	}

	create, ok := providers[providerCfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported provider type: %s", providerCfg.Type)
	}
	return create(ctx, &modelCfg, &providerCfg, samplingOf(&modelCfg))
}

// ProviderTypes lists the supported provider types
func ProviderTypes() []string {
	types := make([]string, 0, len(providers))
	for t := range providers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
