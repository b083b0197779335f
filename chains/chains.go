// Package chains holds the prompt → model pipelines shared by the demos.
package chains

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// Runnable is a compiled chain taking template variables
type Runnable = compose.Runnable[map[string]any, *schema.Message]

// ChatTemplate takes {question}
const ChatTemplate = `你是一个有用的AI助手。请回答以下问题：

问题: {question}

回答:`

// QATemplate takes {context} and {question}
const QATemplate = `基于以下上下文信息，回答用户的问题。如果上下文中没有相关信息，请说明无法从提供的文档中找到答案。

上下文信息:
{context}

用户问题: {question}

回答:`

// New compiles template → chat model. The template is rendered as a single user message.
func New(ctx context.Context, name, template string, m model.BaseChatModel) (Runnable, error) {
	tpl := prompt.FromMessages(schema.FString, schema.UserMessage(template))

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.
		AppendChatTemplate(tpl).
		AppendChatModel(m)

	r, err := chain.Compile(ctx, compose.WithGraphName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s chain: %w", name, err)
	}
	return r, nil
}

// NewChat compiles the plain question answering chain
func NewChat(ctx context.Context, m model.BaseChatModel) (Runnable, error) {
	return New(ctx, "chat", ChatTemplate, m)
}

// NewQA compiles the retrieval augmented answering chain
func NewQA(ctx context.Context, m model.BaseChatModel) (Runnable, error) {
	return New(ctx, "docqa", QATemplate, m)
}
