package document

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	einodoc "github.com/cloudwego/eino/components/document"
	"github.com/cloudwego/eino/schema"

	"github.com/tk103331/eino-browser-demo/logger"
)

// ErrFileNotFound is returned when a source path does not exist
var ErrFileNotFound = errors.New("file does not exist")

// Loader reads local text files as eino documents and splits them into chunks
type Loader struct {
	splitter *Splitter
}

var _ einodoc.Loader = (*Loader)(nil)

// NewLoader returns a loader chunking with splitter
func NewLoader(splitter *Splitter) *Loader {
	return &Loader{splitter: splitter}
}

// Load implements eino's document.Loader. src.URI is a local path; the returned
// documents are already split.
func (l *Loader) Load(ctx context.Context, src einodoc.Source, _ ...einodoc.LoaderOption) ([]*schema.Document, error) {
	path := strings.TrimPrefix(src.URI, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return l.LoadText(ctx, string(data), path)
}

// LoadText splits raw text, tagging every chunk with source
func (l *Loader) LoadText(ctx context.Context, content, source string) ([]*schema.Document, error) {
	docs, err := l.splitter.Transform(ctx, []*schema.Document{{
		ID:       source,
		Content:  content,
		MetaData: map[string]any{MetaSource: source},
	}})
	if err != nil {
		return nil, err
	}
	logger.Debug("DOCUMENT", fmt.Sprintf("split %s into %d chunks", source, len(docs)))
	return docs, nil
}

// LoadFiles loads every path. A file that fails is reported to onError and
// skipped; onError may be nil.
func (l *Loader) LoadFiles(ctx context.Context, paths []string, onError func(path string, err error)) []*schema.Document {
	var all []*schema.Document
	for _, p := range paths {
		docs, err := l.Load(ctx, einodoc.Source{URI: p})
		if err != nil {
			logger.Warn("DOCUMENT", fmt.Sprintf("skip %s: %v", p, err))
			if onError != nil {
				onError(p, err)
			}
			continue
		}
		all = append(all, docs...)
	}
	return all
}
