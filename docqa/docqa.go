// Package docqa answers questions from loaded documents.
package docqa

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/cloudwego/eino/components/indexer"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"

	"github.com/tk103331/eino-browser-demo/chains"
	"github.com/tk103331/eino-browser-demo/document"
	"github.com/tk103331/eino-browser-demo/logger"
)

// NoAnswer is returned without calling the model when retrieval finds nothing
const NoAnswer = "抱歉，我在提供的文档中没有找到与您问题相关的信息。"

// ContextDocs is how many chunks are put into the prompt
const ContextDocs = 3

// Store is what QA needs from a document store
type Store interface {
	indexer.Indexer
	retriever.Retriever
}

// QA is the document question answering system
type QA struct {
	loader *document.Loader
	store  Store
	chain  chains.Runnable
}

// New compiles the QA chain around chatModel
func New(ctx context.Context, chatModel model.BaseChatModel, loader *document.Loader, store Store) (*QA, error) {
	chain, err := chains.NewQA(ctx, chatModel)
	if err != nil {
		return nil, err
	}
	return &QA{loader: loader, store: store, chain: chain}, nil
}

// Load indexes input, which is a file path when such a file exists and raw
// text otherwise. It returns the number of chunks added.
func (q *QA) Load(ctx context.Context, input string) (int, error) {
	var (
		docs []*schema.Document
		err  error
	)
	if info, statErr := os.Stat(input); statErr == nil && !info.IsDir() {
		docs, err = q.loader.Load(ctx, documentSource(input))
	} else {
		docs, err = q.loader.LoadText(ctx, input, "text")
	}
	if err != nil {
		return 0, err
	}
	return q.index(ctx, docs)
}

// LoadFiles indexes every readable file; failures go to onError
func (q *QA) LoadFiles(ctx context.Context, paths []string, onError func(path string, err error)) (int, error) {
	return q.index(ctx, q.loader.LoadFiles(ctx, paths, onError))
}

func (q *QA) index(ctx context.Context, docs []*schema.Document) (int, error) {
	if _, err := q.store.Store(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to index documents: %w", err)
	}
	return len(docs), nil
}

// Query answers question from the most similar chunks
func (q *QA) Query(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.New("question is empty")
	}

	docs, err := q.store.Retrieve(ctx, question, retriever.WithTopK(ContextDocs))
	if err != nil {
		return "", fmt.Errorf("failed to retrieve documents: %w", err)
	}
	if len(docs) == 0 {
		logger.Info("DOCQA", fmt.Sprintf("no document matches %q", question))
		return NoAnswer, nil
	}

	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, d.Content)
	}

	out, err := q.chain.Invoke(ctx, map[string]any{
		"context":  strings.Join(parts, "\n\n"),
		"question": question,
	})
	if err != nil {
		return "", err
	}
	return out.Content, nil
}
