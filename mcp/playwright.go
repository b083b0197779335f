package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/tool"
	"github.com/mark3labs/mcp-go/client"
	"github.com/tidwall/gjson"

	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/logger"
)

// Playwright MCP server tool names
const (
	ToolNavigate     = "playwright_navigate"
	ToolScreenshot   = "playwright_screenshot"
	ToolClick        = "playwright_click"
	ToolFill         = "playwright_fill"
	ToolHover        = "playwright_hover"
	ToolSelect       = "playwright_select"
	ToolEvaluate     = "playwright_evaluate"
	ToolVisibleText  = "playwright_get_visible_text"
	ToolVisibleHTML  = "playwright_get_visible_html"
	ToolGoBack       = "playwright_go_back"
	ToolGoForward    = "playwright_go_forward"
	ToolPressKey     = "playwright_press_key"
	ToolDrag         = "playwright_drag"
	ToolSavePDF      = "playwright_save_as_pdf"
	ToolConsoleLogs  = "playwright_console_logs"
	ToolStartCodegen = "playwright_start_codegen_session"
	ToolEndCodegen   = "playwright_end_codegen_session"
	ToolClose        = "playwright_close"
)

// tools without parameters still expect a placeholder argument
var noArgs = map[string]any{"random_string": "dummy"}

// Playwright is a session with one Playwright MCP server. It connects on
// first use and keeps the active codegen session id.
type Playwright struct {
	server config.MCPServer
	dial   Dialer

	mu        sync.Mutex
	cli       *client.Client
	tools     map[string]tool.InvokableTool
	sessionID string
}

// NewPlaywright creates a handle; nothing is started until Initialize or the first call.
// A nil dial uses Dial.
func NewPlaywright(server config.MCPServer, dial Dialer) *Playwright {
	if dial == nil {
		dial = Dial
	}
	return &Playwright{server: server, dial: dial}
}

// Initialize connects and lists the server's tools. Calling it again is a no-op.
func (p *Playwright) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initLocked(ctx)
}

func (p *Playwright) initLocked(ctx context.Context) error {
	if p.cli != nil {
		return nil
	}

	cli, err := p.dial(ctx, "playwright", p.server)
	if err != nil {
		return NewMCPError("initialize", "playwright", "", fmt.Errorf("%w: %v", ErrConnectionFailed, err))
	}
	if _, err := initSession(ctx, cli); err != nil {
		_ = cli.Close()
		return NewMCPError("initialize", "playwright", "", err)
	}
	remote, err := loadTools(ctx, cli)
	if err != nil {
		_ = cli.Close()
		return NewMCPError("initialize", "playwright", "", err)
	}

	p.tools = make(map[string]tool.InvokableTool, len(remote))
	for _, rt := range remote {
		p.tools[rt.name] = rt.tool
	}
	p.cli = cli
	logger.Info("MCP", fmt.Sprintf("playwright session ready, %d tools", len(p.tools)))
	return nil
}

// Initialized reports whether the session is connected
func (p *Playwright) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cli != nil
}

// ToolNames lists the remote tools in alphabetical order
func (p *Playwright) ToolNames(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.initLocked(ctx); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(p.tools))
	for name := range p.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Call invokes a remote tool by name and returns the text of its result
func (p *Playwright) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	raw, err := p.call(ctx, name, args)
	if err != nil {
		return "", err
	}
	return ResultText(raw), nil
}

// call returns the serialized tool result
func (p *Playwright) call(ctx context.Context, name string, args map[string]any) (string, error) {
	p.mu.Lock()
	if err := p.initLocked(ctx); err != nil {
		p.mu.Unlock()
		return "", err
	}
	t, ok := p.tools[name]
	p.mu.Unlock()

	if !ok {
		return "", NewMCPError("call", "playwright", name, ErrToolNotFound)
	}
	if args == nil {
		args = map[string]any{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return "", NewMCPError("call", "playwright", name, err)
	}

	logger.Debug("MCP", fmt.Sprintf("call %s %s", name, payload))
	raw, err := t.InvokableRun(ctx, string(payload))
	if err != nil {
		return "", NewMCPError("call", "playwright", name, err)
	}
	return raw, nil
}

// ResultText extracts the text items of a serialized tool result, falling
// back to the raw payload when there are none.
func ResultText(raw string) string {
	if !gjson.Valid(raw) {
		return raw
	}
	var texts []string
	gjson.Get(raw, "content").ForEach(func(_, item gjson.Result) bool {
		if item.Get("type").String() == "text" {
			texts = append(texts, item.Get("text").String())
		}
		return true
	})
	if len(texts) == 0 {
		return raw
	}
	return strings.Join(texts, "\n")
}

// sessionIDFrom looks for sessionId at the top level, then inside text content
func sessionIDFrom(raw string) string {
	if !gjson.Valid(raw) {
		return ""
	}
	if id := gjson.Get(raw, "sessionId"); id.Exists() {
		return id.String()
	}
	var id string
	gjson.Get(raw, "content").ForEach(func(_, item gjson.Result) bool {
		text := item.Get("text").String()
		if gjson.Valid(text) {
			if v := gjson.Get(text, "sessionId"); v.Exists() {
				id = v.String()
				return false
			}
		}
		return true
	})
	return id
}

func (p *Playwright) Navigate(ctx context.Context, url string) (string, error) {
	res, err := p.Call(ctx, ToolNavigate, map[string]any{"url": url})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 成功导航到: %s\n%s", url, res), nil
}

// Screenshot saves a screenshot under name; savePng also writes it to disk on the server side
func (p *Playwright) Screenshot(ctx context.Context, name string, savePng bool) (string, error) {
	args := map[string]any{"name": name}
	if savePng {
		args["savePng"] = true
	}
	res, err := p.Call(ctx, ToolScreenshot, args)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 截图完成: %s\n%s", name, res), nil
}

func (p *Playwright) Click(ctx context.Context, selector string) (string, error) {
	res, err := p.Call(ctx, ToolClick, map[string]any{"selector": selector})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 成功点击: %s\n%s", selector, res), nil
}

func (p *Playwright) Fill(ctx context.Context, selector, value string) (string, error) {
	res, err := p.Call(ctx, ToolFill, map[string]any{"selector": selector, "value": value})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 成功填写 %s: %s\n%s", selector, value, res), nil
}

func (p *Playwright) Hover(ctx context.Context, selector string) (string, error) {
	res, err := p.Call(ctx, ToolHover, map[string]any{"selector": selector})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 悬停成功: %s\n%s", selector, res), nil
}

// Select picks value in a <select> element
func (p *Playwright) Select(ctx context.Context, selector, value string) (string, error) {
	res, err := p.Call(ctx, ToolSelect, map[string]any{"selector": selector, "value": value})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 选择成功 %s: %s\n%s", selector, value, res), nil
}

func (p *Playwright) Evaluate(ctx context.Context, script string) (string, error) {
	res, err := p.Call(ctx, ToolEvaluate, map[string]any{"script": script})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ JavaScript 执行结果:\n%s", res), nil
}

func (p *Playwright) VisibleText(ctx context.Context) (string, error) {
	res, err := p.Call(ctx, ToolVisibleText, noArgs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📄 页面文本内容:\n%s", res), nil
}

func (p *Playwright) VisibleHTML(ctx context.Context) (string, error) {
	res, err := p.Call(ctx, ToolVisibleHTML, noArgs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📄 页面 HTML:\n%s", res), nil
}

func (p *Playwright) GoBack(ctx context.Context) (string, error) {
	res, err := p.Call(ctx, ToolGoBack, noArgs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 后退成功\n%s", res), nil
}

func (p *Playwright) GoForward(ctx context.Context) (string, error) {
	res, err := p.Call(ctx, ToolGoForward, noArgs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 前进成功\n%s", res), nil
}

// PressKey presses key, on selector when given
func (p *Playwright) PressKey(ctx context.Context, key, selector string) (string, error) {
	args := map[string]any{"key": key}
	if selector != "" {
		args["selector"] = selector
	}
	res, err := p.Call(ctx, ToolPressKey, args)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 按键成功: %s\n%s", key, res), nil
}

func (p *Playwright) Drag(ctx context.Context, sourceSelector, targetSelector string) (string, error) {
	res, err := p.Call(ctx, ToolDrag, map[string]any{
		"sourceSelector": sourceSelector,
		"targetSelector": targetSelector,
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 拖拽成功: %s -> %s\n%s", sourceSelector, targetSelector, res), nil
}

// SavePDF saves the page as filename under outputPath; filename defaults to page.pdf
func (p *Playwright) SavePDF(ctx context.Context, outputPath, filename string) (string, error) {
	if filename == "" {
		filename = "page.pdf"
	}
	res, err := p.Call(ctx, ToolSavePDF, map[string]any{"outputPath": outputPath, "filename": filename})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ PDF 保存成功: %s\n%s", filename, res), nil
}

// ConsoleLogs reads browser console output; logType defaults to "all", limit <= 0 means no limit
func (p *Playwright) ConsoleLogs(ctx context.Context, logType string, limit int) (string, error) {
	if logType == "" {
		logType = "all"
	}
	args := map[string]any{"type": logType}
	if limit > 0 {
		args["limit"] = limit
	}
	res, err := p.Call(ctx, ToolConsoleLogs, args)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📋 控制台日志:\n%s", res), nil
}

// StartCodegen starts recording a test into outputPath and remembers the session id
func (p *Playwright) StartCodegen(ctx context.Context, outputPath, testNamePrefix string) (string, error) {
	if testNamePrefix == "" {
		testNamePrefix = "GeneratedTest"
	}
	raw, err := p.call(ctx, ToolStartCodegen, map[string]any{
		"options": map[string]any{
			"outputPath":      outputPath,
			"testNamePrefix":  testNamePrefix,
			"includeComments": true,
		},
	})
	if err != nil {
		return "", err
	}

	if id := sessionIDFrom(raw); id != "" {
		p.mu.Lock()
		p.sessionID = id
		p.mu.Unlock()
	}
	return fmt.Sprintf("✅ 代码生成会话已开始\n%s", ResultText(raw)), nil
}

// SessionID returns the active codegen session, if any
func (p *Playwright) SessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessionID
}

// EndCodegen ends the active codegen session
func (p *Playwright) EndCodegen(ctx context.Context) (string, error) {
	id := p.SessionID()
	if id == "" {
		return "", ErrNoCodegenSession
	}
	res, err := p.Call(ctx, ToolEndCodegen, map[string]any{"sessionId": id})
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.sessionID = ""
	p.mu.Unlock()
	return fmt.Sprintf("✅ 代码生成会话已结束\n%s", res), nil
}

// Close closes the remote browser and the connection. It is a no-op when never connected.
func (p *Playwright) Close(ctx context.Context) error {
	p.mu.Lock()
	cli := p.cli
	_, hasClose := p.tools[ToolClose]
	p.mu.Unlock()

	if cli == nil {
		return nil
	}

	var closeErr error
	if hasClose {
		if _, err := p.Call(ctx, ToolClose, noArgs); err != nil {
			closeErr = err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := cli.Close(); err != nil && closeErr == nil {
		closeErr = NewMCPError("close", "playwright", "", err)
	}
	p.cli = nil
	p.tools = nil
	p.sessionID = ""
	if closeErr == nil {
		logger.Info("MCP", "playwright session closed")
	}
	return closeErr
}
