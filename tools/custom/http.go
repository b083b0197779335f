package custom

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/tk103331/eino-browser-demo/config"
)

const defaultTimeout = 30 * time.Second

// HTTPTool sends a request built from URL, header and body templates
type HTTPTool struct {
	info    *schema.ToolInfo
	url     string
	method  string
	headers map[string]string
	body    string
	client  *http.Client
}

// NewHTTPTool 创建HTTP工具，必须配置url
func NewHTTPTool(name string, cfg config.Tool) (*HTTPTool, error) {
	t := &HTTPTool{
		info:    toolInfo(name, cfg.Description, "HTTP工具", cfg.Params),
		method:  http.MethodGet,
		headers: stringMap(cfg.Config, "headers"),
	}
	timeout := defaultTimeout

	if v, ok := cfg.Config["url"]; ok {
		t.url = v.String()
	}
	if v, ok := cfg.Config["method"]; ok && v.String() != "" {
		t.method = strings.ToUpper(v.String())
	}
	if v, ok := cfg.Config["body"]; ok {
		t.body = v.String()
	}
	if v, ok := cfg.Config["timeout"]; ok && v.Int() > 0 {
		timeout = time.Duration(v.Int()) * time.Second
	}

	if t.url == "" {
		return nil, fmt.Errorf("http工具 %s 必须配置url属性", name)
	}
	t.client = &http.Client{Timeout: timeout}
	return t, nil
}

func (h *HTTPTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return h.info, nil
}

func (h *HTTPTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	args, err := parseArgs(argumentsInJSON)
	if err != nil {
		return "", err
	}

	url, err := render("url", h.url, args)
	if err != nil {
		return "", fmt.Errorf("渲染URL模板失败: %w", err)
	}

	var body io.Reader
	if h.body != "" {
		s, err := render("body", h.body, args)
		if err != nil {
			return "", fmt.Errorf("渲染请求体模板失败: %w", err)
		}
		body = strings.NewReader(s)
	}

	req, err := http.NewRequestWithContext(ctx, h.method, url, body)
	if err != nil {
		return "", fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	for key, value := range h.headers {
		v, err := render("header", value, args)
		if err != nil {
			return "", fmt.Errorf("渲染请求头模板失败: %w", err)
		}
		req.Header.Set(key, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("发送HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取响应失败: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP请求失败，状态码: %d, 响应: %s", resp.StatusCode, respBody)
	}
	return string(respBody), nil
}
