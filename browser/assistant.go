package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tk103331/eino-browser-demo/logger"
)

// Operation is a toolkit action name and its description for prompts
type Operation struct {
	Name        string
	Description string
}

// Descriptions lists the toolkit operations in a stable order
func Descriptions() []Operation {
	return []Operation{
		{"navigate_to", "导航到指定URL"},
		{"extract_text", "提取页面文本内容"},
		{"extract_links", "提取页面中的所有链接"},
		{"click_element", "点击页面元素"},
		{"fill_input", "填写输入框"},
		{"press_key", "按下键盘按键"},
		{"get_page_title", "获取页面标题"},
		{"get_current_url", "获取当前页面URL"},
		{"screenshot", "截图"},
		{"wait_for_element", "等待元素出现"},
		{"execute_javascript", "执行JavaScript代码"},
		{"get_page_html", "获取页面HTML"},
		{"go_back", "后退"},
		{"go_forward", "前进"},
	}
}

// ExtractKind selects what NavigateAndExtract returns
type ExtractKind string

const (
	ExtractText  ExtractKind = "text"
	ExtractLinks ExtractKind = "links"
)

const (
	maxTextRunes     = 1000
	maxLinks         = 10
	maxLinkTextRunes = 50
)

const planningPrompt = `
你是一个智能的浏览器自动化助手。用户给出了一个任务，你需要分析任务并规划执行步骤。

可用的浏览器操作工具:
%s

用户任务: %s

请分析这个任务，并给出详细的执行步骤建议。每个步骤应该包含：
1. 要使用的工具名称
2. 工具的参数说明
3. 预期的结果
4. 可能的注意事项

请用中文回答，格式要清晰，具体可操作。
`

// Assistant combines a chat model with the toolkit. It plans tasks without
// executing them and runs simple navigate-and-extract flows.
type Assistant struct {
	model   model.BaseChatModel
	toolkit *Toolkit
}

func NewAssistant(m model.BaseChatModel, toolkit *Toolkit) *Assistant {
	return &Assistant{model: m, toolkit: toolkit}
}

// Toolkit returns the underlying toolkit
func (a *Assistant) Toolkit() *Toolkit {
	return a.toolkit
}

// PlanningPrompt renders the prompt sent by PlanTask
func PlanningPrompt(task string) string {
	lines := make([]string, 0, len(Descriptions()))
	for _, d := range Descriptions() {
		lines = append(lines, fmt.Sprintf("- %s: %s", d.Name, d.Description))
	}
	return fmt.Sprintf(planningPrompt, strings.Join(lines, "\n"), task)
}

// PlanTask asks the model for step-by-step advice and renders a report. Nothing is executed.
func (a *Assistant) PlanTask(ctx context.Context, task string) (string, error) {
	logger.Debug("BROWSER", fmt.Sprintf("planning task: %s", task))

	reply, err := a.model.Generate(ctx, []*schema.Message{schema.UserMessage(PlanningPrompt(task))})
	if err != nil {
		return "", fmt.Errorf("任务分析失败: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("\n📋 任务分析完成\n\n")
	fmt.Fprintf(&sb, "🎯 任务描述: %s\n\n", task)
	fmt.Fprintf(&sb, "📝 AI 执行建议:\n%s\n\n", reply.Content)
	sb.WriteString("🛠️ 可用工具说明:\n")
	for _, d := range Descriptions() {
		fmt.Fprintf(&sb, "• %s: %s\n", d.Name, d.Description)
	}
	sb.WriteString("\n💡 使用提示: \n")
	sb.WriteString("- 这是一个任务规划建议，实际执行需要根据具体情况调整\n")
	sb.WriteString("- 可以使用 browser 命令的执行模式让 AI 直接操作浏览器\n")
	sb.WriteString("- 建议先测试简单网站，再处理复杂任务\n")
	return sb.String(), nil
}

// NavigateAndExtract opens url and reports its title, location and either
// the first 1000 characters of text or the first 10 links.
func (a *Assistant) NavigateAndExtract(ctx context.Context, url string, kind ExtractKind) (string, error) {
	if err := a.toolkit.Navigate(ctx, url); err != nil {
		return "", err
	}
	title, err := a.toolkit.Title(ctx)
	if err != nil {
		return "", err
	}
	current, err := a.toolkit.CurrentURL(ctx)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("🌐 页面访问成功\n")
	fmt.Fprintf(&sb, "📄 标题: %s\n", title)
	fmt.Fprintf(&sb, "🔗 URL: %s\n\n", current)

	switch kind {
	case ExtractLinks:
		links, err := a.toolkit.ExtractLinks(ctx)
		if err != nil {
			return "", err
		}
		sb.WriteString(RenderLinks(links))
	default:
		text, err := a.toolkit.ExtractText(ctx)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "📝 页面文本内容:\n%s", Truncate(text, maxTextRunes))
	}
	return sb.String(), nil
}

// RenderLinks lists the first ten links with a count of the remainder
func RenderLinks(links []Link) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔗 页面链接 (共 %d 个):\n", len(links))
	for i, l := range links {
		if i == maxLinks {
			break
		}
		fmt.Fprintf(&sb, "%d. %s -> %s\n", i+1, head(l.Text, maxLinkTextRunes), l.Href)
	}
	if len(links) > maxLinks {
		fmt.Fprintf(&sb, "... 还有 %d 个链接", len(links)-maxLinks)
	}
	return sb.String()
}

func head(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Truncate cuts s to n runes, appending "..." when something was cut
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
