package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp/kb"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tk103331/eino-browser-demo/config"
)

func chromeAvailable() bool {
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "chrome"} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

func skipIfNoChrome(t *testing.T) {
	t.Helper()
	if !chromeAvailable() {
		t.Skip("Chrome/Chromium not found on PATH")
	}
}

type fixedModel struct {
	reply  string
	prompt string
}

func (f *fixedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.prompt = input[len(input)-1].Content
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fixedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{m}), nil
}

func TestNewToolkit_Defaults(t *testing.T) {
	tk := NewToolkit(config.Browser{Headless: true})
	assert.Equal(t, defaultTimeout, tk.timeout)
	assert.False(t, tk.Initialized())
	tk.Close()

	tk = NewToolkit(config.Browser{Timeout: 5})
	assert.Equal(t, 5*time.Second, tk.timeout)
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, kb.Enter, keyFor("Enter"))
	assert.Equal(t, kb.Escape, keyFor(" esc "))
	assert.Equal(t, "a", keyFor("a"))
}

func TestTruncateAndRenderLinks(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 3))
	assert.Equal(t, "你好...", Truncate("你好世界", 2))

	var links []Link
	for i := 0; i < 12; i++ {
		links = append(links, Link{Text: strings.Repeat("字", 60), Href: fmt.Sprintf("https://example.com/%d", i)})
	}
	out := RenderLinks(links)
	assert.Contains(t, out, "共 12 个")
	assert.Contains(t, out, "10. "+strings.Repeat("字", 50)+" -> https://example.com/9")
	assert.NotContains(t, out, "https://example.com/10")
	assert.Contains(t, out, "还有 2 个链接")
}

func TestPlanTask_RendersReport(t *testing.T) {
	m := &fixedModel{reply: "1. navigate_to 百度"}
	a := NewAssistant(m, NewToolkit(config.Browser{Headless: true}))

	out, err := a.PlanTask(context.Background(), "访问百度首页并搜索'人工智能'")
	require.NoError(t, err)

	assert.Contains(t, m.prompt, "- navigate_to: 导航到指定URL")
	assert.Contains(t, m.prompt, "用户任务: 访问百度首页并搜索'人工智能'")
	assert.Contains(t, out, "📝 AI 执行建议:\n1. navigate_to 百度")
	assert.Contains(t, out, "• wait_for_element: 等待元素出现")
	assert.False(t, a.Toolkit().Initialized(), "planning never starts the browser")
}

func TestDescriptionsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range Descriptions() {
		assert.False(t, seen[d.Name], d.Name)
		assert.NotEmpty(t, d.Description)
		seen[d.Name] = true
	}
}

func TestToolsInfo(t *testing.T) {
	tools, err := NewToolkit(config.Browser{}).Tools()
	require.NoError(t, err)
	require.NotEmpty(t, tools)

	names := map[string]bool{}
	for _, bt := range tools {
		info, err := bt.Info(context.Background())
		require.NoError(t, err)
		names[info.Name] = true
		_, ok := bt.(tool.InvokableTool)
		assert.True(t, ok)
	}
	assert.True(t, names["browser_navigate"])
	assert.True(t, names["browser_fill"])
}

const testPage = `<!DOCTYPE html>
<html><head><title>Test Page</title></head>
<body>
<h1>Hello chromedp</h1>
<a href="/next" title="next page">Next</a>
<input id="q" type="text">
<button id="btn" onclick="document.getElementById('out').innerText='clicked'">Go</button>
<div id="out"></div>
</body></html>`

func TestToolkit_Integration(t *testing.T) {
	skipIfNoChrome(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, testPage)
	}))
	defer srv.Close()

	tk := NewToolkit(config.Browser{Headless: true, Timeout: 20})
	defer tk.Close()
	ctx := context.Background()

	require.NoError(t, tk.Navigate(ctx, srv.URL))
	assert.True(t, tk.Initialized())

	title, err := tk.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Test Page", title)

	text, err := tk.ExtractText(ctx)
	require.NoError(t, err)
	assert.Contains(t, text, "Hello chromedp")

	links, err := tk.ExtractLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "Next", links[0].Text)
	assert.Equal(t, "next page", links[0].Title)

	require.NoError(t, tk.Fill(ctx, "#q", "eino"))
	v, err := tk.Evaluate(ctx, `document.getElementById('q').value`)
	require.NoError(t, err)
	assert.Equal(t, "eino", v)

	require.NoError(t, tk.Click(ctx, "#btn"))
	require.NoError(t, tk.WaitForElement(ctx, "#out", time.Second*5))
	out, err := tk.Evaluate(ctx, `document.getElementById('out').innerText`)
	require.NoError(t, err)
	assert.Equal(t, "clicked", out)

	path := filepath.Join(t.TempDir(), "shots", "page.png")
	buf, err := tk.Screenshot(ctx, path)
	require.NoError(t, err)
	assert.NotEmpty(t, buf)
	_, err = os.Stat(path)
	require.NoError(t, err)

	html, err := tk.HTML(ctx)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Hello chromedp</h1>")

	a := NewAssistant(&fixedModel{}, tk)
	report, err := a.NavigateAndExtract(ctx, srv.URL, ExtractLinks)
	require.NoError(t, err)
	assert.Contains(t, report, "📄 标题: Test Page")
	assert.Contains(t, report, "共 1 个")
}
