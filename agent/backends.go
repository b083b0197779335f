package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/tk103331/eino-browser-demo/browser"
	"github.com/tk103331/eino-browser-demo/mcp"
)

const maxPageRunes = 1000

// ToolkitBackend runs actions on the local chromedp toolkit
type ToolkitBackend struct {
	toolkit *browser.Toolkit
	// screenshots are written here as <name>.png
	dir string
}

func NewToolkitBackend(toolkit *browser.Toolkit, screenshotDir string) *ToolkitBackend {
	return &ToolkitBackend{toolkit: toolkit, dir: screenshotDir}
}

func (b *ToolkitBackend) Navigate(ctx context.Context, url string) (string, error) {
	if err := b.toolkit.Navigate(ctx, url); err != nil {
		return "", err
	}
	title, err := b.toolkit.Title(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 成功导航到: %s\n📄 标题: %s", url, title), nil
}

func (b *ToolkitBackend) Click(ctx context.Context, selector string) (string, error) {
	if err := b.toolkit.Click(ctx, selector); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 成功点击: %s", selector), nil
}

func (b *ToolkitBackend) Fill(ctx context.Context, selector, value string) (string, error) {
	if err := b.toolkit.Fill(ctx, selector, value); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 成功填写 %s: %s", selector, value), nil
}

func (b *ToolkitBackend) Screenshot(ctx context.Context, name string) (string, error) {
	path := filepath.Join(b.dir, name+".png")
	if _, err := b.toolkit.Screenshot(ctx, path); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 截图完成: %s", path), nil
}

func (b *ToolkitBackend) Evaluate(ctx context.Context, script string) (string, error) {
	res, err := b.toolkit.Evaluate(ctx, script)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(res)
	if err != nil {
		out = []byte(fmt.Sprint(res))
	}
	return fmt.Sprintf("✅ JavaScript 执行结果:\n%s", out), nil
}

func (b *ToolkitBackend) PageText(ctx context.Context) (string, error) {
	text, err := b.toolkit.ExtractText(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📄 页面文本内容:\n%s", browser.Truncate(text, maxPageRunes)), nil
}

func (b *ToolkitBackend) PageHTML(ctx context.Context) (string, error) {
	html, err := b.toolkit.HTML(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📄 页面 HTML:\n%s", browser.Truncate(html, maxPageRunes)), nil
}

func (b *ToolkitBackend) PressKey(ctx context.Context, key, selector string) (string, error) {
	if selector != "" {
		if err := b.toolkit.Click(ctx, selector); err != nil {
			return "", err
		}
	}
	if err := b.toolkit.PressKey(ctx, key); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ 按键成功: %s", key), nil
}

func (b *ToolkitBackend) Back(ctx context.Context) (string, error) {
	if err := b.toolkit.Back(ctx); err != nil {
		return "", err
	}
	return "✅ 后退成功", nil
}

func (b *ToolkitBackend) Forward(ctx context.Context) (string, error) {
	if err := b.toolkit.Forward(ctx); err != nil {
		return "", err
	}
	return "✅ 前进成功", nil
}

// MCPBackend runs actions through the Playwright MCP server
type MCPBackend struct {
	pw *mcp.Playwright
}

func NewMCPBackend(pw *mcp.Playwright) *MCPBackend {
	return &MCPBackend{pw: pw}
}

func (b *MCPBackend) Navigate(ctx context.Context, url string) (string, error) {
	return b.pw.Navigate(ctx, url)
}

func (b *MCPBackend) Click(ctx context.Context, selector string) (string, error) {
	return b.pw.Click(ctx, selector)
}

func (b *MCPBackend) Fill(ctx context.Context, selector, value string) (string, error) {
	return b.pw.Fill(ctx, selector, value)
}

func (b *MCPBackend) Screenshot(ctx context.Context, name string) (string, error) {
	return b.pw.Screenshot(ctx, name, false)
}

func (b *MCPBackend) Evaluate(ctx context.Context, script string) (string, error) {
	return b.pw.Evaluate(ctx, script)
}

func (b *MCPBackend) PageText(ctx context.Context) (string, error) {
	return b.pw.VisibleText(ctx)
}

func (b *MCPBackend) PageHTML(ctx context.Context) (string, error) {
	return b.pw.VisibleHTML(ctx)
}

func (b *MCPBackend) PressKey(ctx context.Context, key, selector string) (string, error) {
	return b.pw.PressKey(ctx, key, selector)
}

func (b *MCPBackend) Back(ctx context.Context) (string, error) {
	return b.pw.GoBack(ctx)
}

func (b *MCPBackend) Forward(ctx context.Context) (string, error) {
	return b.pw.GoForward(ctx)
}
