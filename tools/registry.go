// Package tools builds the eino tools declared in the configuration file.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/tool"

	"github.com/tk103331/eino-browser-demo/browser"
	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/logger"
	"github.com/tk103331/eino-browser-demo/tools/custom"
)

// TypeBrowser exposes the chromedp toolkit; one entry yields all browser_* tools
const TypeBrowser = "browser"

type builder func(ctx context.Context, name string, cfg config.Tool) (tool.BaseTool, error)

var builders = map[string]builder{
	"customhttp": func(_ context.Context, name string, cfg config.Tool) (tool.BaseTool, error) {
		return custom.NewHTTPTool(name, cfg)
	},
	"customexec": func(_ context.Context, name string, cfg config.Tool) (tool.BaseTool, error) {
		return custom.NewExecTool(name, cfg)
	},
	"bingsearch":         newBingSearchTool,
	"browseruse":         newBrowserUseTool,
	"commandline":        newCommandLineTool,
	"duckduckgo":         newDuckDuckGoTool,
	"googlesearch":       newGoogleSearchTool,
	"httprequest":        newHTTPRequestTool,
	"sequentialthinking": newSequentialThinkingTool,
	"wikipedia":          newWikipediaTool,
}

// Types lists the supported tool types
func Types() []string {
	types := make([]string, 0, len(builders)+1)
	for t := range builders {
		types = append(types, t)
	}
	types = append(types, TypeBrowser)
	sort.Strings(types)
	return types
}

// Registry creates configured tools on demand. Tools are created once and
// shared; the browser toolkit behind the browser type is closed by Close.
type Registry struct {
	tools   map[string]config.Tool
	browser config.Browser

	mu      sync.Mutex
	built   map[string][]tool.BaseTool
	toolkit *browser.Toolkit
}

func NewRegistry(cfg *config.Config) *Registry {
	return &Registry{
		tools:   cfg.Tools,
		browser: cfg.Browser,
		built:   make(map[string][]tool.BaseTool),
	}
}

// Tools returns the tools for the given configured names, in order
func (r *Registry) Tools(ctx context.Context, names []string) ([]tool.BaseTool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []tool.BaseTool
	for _, name := range names {
		ts, err := r.buildLocked(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, ts...)
	}
	return out, nil
}

func (r *Registry) buildLocked(ctx context.Context, name string) ([]tool.BaseTool, error) {
	if ts, ok := r.built[name]; ok {
		return ts, nil
	}

	cfg, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("工具配置不存在: %s", name)
	}

	var ts []tool.BaseTool
	typ := strings.ToLower(cfg.Type)
	if typ == TypeBrowser {
		if r.toolkit == nil {
			r.toolkit = browser.NewToolkit(r.browser)
		}
		var err error
		if ts, err = r.toolkit.Tools(); err != nil {
			return nil, fmt.Errorf("创建工具 %s 失败: %w", name, err)
		}
	} else {
		build, ok := builders[typ]
		if !ok {
			return nil, fmt.Errorf("unsupported tool type: %s", cfg.Type)
		}
		t, err := build(ctx, name, cfg)
		if err != nil {
			return nil, fmt.Errorf("创建工具 %s 失败: %w", name, err)
		}
		ts = []tool.BaseTool{t}
	}

	r.built[name] = ts
	logger.Debug("TOOLS", fmt.Sprintf("created tool %s (%s)", name, typ))
	return ts, nil
}

// Close releases the browser toolkit if one was started
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.toolkit != nil {
		r.toolkit.Close()
		r.toolkit = nil
	}
	r.built = make(map[string][]tool.BaseTool)
}
