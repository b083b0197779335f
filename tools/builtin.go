package tools

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/tool/browseruse"
	"github.com/cloudwego/eino-ext/components/tool/commandline"
	getTool "github.com/cloudwego/eino-ext/components/tool/httprequest/get"
	postTool "github.com/cloudwego/eino-ext/components/tool/httprequest/post"
	"github.com/cloudwego/eino-ext/components/tool/sequentialthinking"
	"github.com/cloudwego/eino/components/tool"

	"github.com/tk103331/eino-browser-demo/config"
)

// browser-use drives its own Chrome, separate from the browser toolkit
func newBrowserUseTool(ctx context.Context, _ string, _ config.Tool) (tool.BaseTool, error) {
	return browseruse.NewBrowserUseTool(ctx, &browseruse.Config{})
}

// str_replace_editor with the default local operator
func newCommandLineTool(ctx context.Context, _ string, _ config.Tool) (tool.BaseTool, error) {
	return commandline.NewStrReplaceEditor(ctx, &commandline.EditorConfig{})
}

func newSequentialThinkingTool(_ context.Context, _ string, _ config.Tool) (tool.BaseTool, error) {
	return sequentialthinking.NewTool()
}

// newHTTPRequestTool builds the GET tool, or POST when method is POST
func newHTTPRequestTool(ctx context.Context, _ string, cfg config.Tool) (tool.BaseTool, error) {
	o := options(cfg.Config)

	timeout := 30 * time.Second
	o.seconds("timeout", &timeout)

	headers := make(map[string]string)
	if v, ok := o["headers"]; ok && v.IsMap() {
		for k, item := range v.Map() {
			headers[k] = item.String()
		}
	}
	if v, ok := o["user_agent"]; ok {
		headers["User-Agent"] = v.String()
	}

	client := &http.Client{Timeout: timeout}

	if strings.EqualFold(o["method"].String(), http.MethodPost) {
		return postTool.NewTool(ctx, &postTool.Config{Headers: headers, HttpClient: client})
	}
	return getTool.NewTool(ctx, &getTool.Config{Headers: headers, HttpClient: client})
}
