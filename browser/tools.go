package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
)

type navigateInput struct {
	URL string `json:"url" jsonschema_description:"要访问的完整网址，例如 https://example.com"`
}

type selectorInput struct {
	Selector string `json:"selector" jsonschema_description:"CSS 选择器"`
}

type fillInput struct {
	Selector string `json:"selector" jsonschema_description:"输入框的 CSS 选择器"`
	Text     string `json:"text" jsonschema_description:"要填写的内容"`
}

type keyInput struct {
	Key string `json:"key" jsonschema_description:"按键名称，例如 Enter、Tab、Escape"`
}

type scriptInput struct {
	Script string `json:"script" jsonschema_description:"要在页面中执行的 JavaScript 表达式"`
}

type screenshotInput struct {
	Path string `json:"path,omitempty" jsonschema_description:"PNG 保存路径，为空时只返回截图大小"`
}

type waitInput struct {
	Selector string `json:"selector" jsonschema_description:"要等待出现的 CSS 选择器"`
	Seconds  int    `json:"seconds,omitempty" jsonschema_description:"超时时间（秒），默认 30"`
}

type emptyInput struct{}

type pageOutput struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text,omitempty"`
}

// Tools exposes the toolkit as eino tools, named browser_*
func (t *Toolkit) Tools() ([]tool.BaseTool, error) {
	builders := []func() (tool.InvokableTool, error){
		func() (tool.InvokableTool, error) {
			return utils.InferTool("browser_navigate", "在浏览器中打开网址，返回页面标题、地址和前 1000 个字符的文本", t.navigateTool)
		},
		func() (tool.InvokableTool, error) {
			return utils.InferTool("browser_extract_text", "提取当前页面的文本内容", t.extractTextTool)
		},
		func() (tool.InvokableTool, error) {
			return utils.InferTool("browser_extract_links", "提取当前页面中的所有链接", t.extractLinksTool)
		},
		func() (tool.InvokableTool, error) {
			return utils.InferTool("browser_click", "点击页面元素", t.clickTool)
		},
		func() (tool.InvokableTool, error) {
			return utils.InferTool("browser_fill", "填写输入框", t.fillTool)
		},
		func() (tool.InvokableTool, error) {
			return utils.InferTool("browser_press_key", "按下键盘按键", t.pressKeyTool)
		},
		func() (tool.InvokableTool, error) {
			return utils.InferTool("browser_screenshot", "截取当前页面", t.screenshotTool)
		},
		func() (tool.InvokableTool, error) {
			return utils.InferTool("browser_evaluate", "执行 JavaScript 并返回结果", t.evaluateTool)
		},
		func() (tool.InvokableTool, error) {
			return utils.InferTool("browser_wait_for_element", "等待元素出现", t.waitTool)
		},
	}

	tools := make([]tool.BaseTool, 0, len(builders))
	for _, build := range builders {
		it, err := build()
		if err != nil {
			return nil, fmt.Errorf("browser: build tool: %w", err)
		}
		tools = append(tools, it)
	}
	return tools, nil
}

func (t *Toolkit) pageInfo(ctx context.Context) (pageOutput, error) {
	title, err := t.Title(ctx)
	if err != nil {
		return pageOutput{}, err
	}
	url, err := t.CurrentURL(ctx)
	if err != nil {
		return pageOutput{}, err
	}
	return pageOutput{URL: url, Title: title}, nil
}

func (t *Toolkit) navigateTool(ctx context.Context, in navigateInput) (pageOutput, error) {
	if err := t.Navigate(ctx, in.URL); err != nil {
		return pageOutput{}, err
	}
	out, err := t.pageInfo(ctx)
	if err != nil {
		return pageOutput{}, err
	}
	text, err := t.ExtractText(ctx)
	if err != nil {
		return pageOutput{}, err
	}
	out.Text = Truncate(text, maxTextRunes)
	return out, nil
}

func (t *Toolkit) extractTextTool(ctx context.Context, _ emptyInput) (string, error) {
	return t.ExtractText(ctx)
}

func (t *Toolkit) extractLinksTool(ctx context.Context, _ emptyInput) ([]Link, error) {
	return t.ExtractLinks(ctx)
}

func (t *Toolkit) clickTool(ctx context.Context, in selectorInput) (string, error) {
	if err := t.Click(ctx, in.Selector); err != nil {
		return "", err
	}
	return fmt.Sprintf("clicked %s", in.Selector), nil
}

func (t *Toolkit) fillTool(ctx context.Context, in fillInput) (string, error) {
	if err := t.Fill(ctx, in.Selector, in.Text); err != nil {
		return "", err
	}
	return fmt.Sprintf("filled %s", in.Selector), nil
}

func (t *Toolkit) pressKeyTool(ctx context.Context, in keyInput) (string, error) {
	if err := t.PressKey(ctx, in.Key); err != nil {
		return "", err
	}
	return fmt.Sprintf("pressed %s", in.Key), nil
}

func (t *Toolkit) screenshotTool(ctx context.Context, in screenshotInput) (string, error) {
	buf, err := t.Screenshot(ctx, in.Path)
	if err != nil {
		return "", err
	}
	if in.Path != "" {
		return fmt.Sprintf("screenshot saved to %s", in.Path), nil
	}
	return fmt.Sprintf("screenshot taken (%d bytes)", len(buf)), nil
}

func (t *Toolkit) evaluateTool(ctx context.Context, in scriptInput) (string, error) {
	res, err := t.Evaluate(ctx, in.Script)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Sprint(res), nil
	}
	return string(b), nil
}

func (t *Toolkit) waitTool(ctx context.Context, in waitInput) (string, error) {
	if err := t.WaitForElement(ctx, in.Selector, time.Duration(in.Seconds)*time.Second); err != nil {
		return "", err
	}
	return fmt.Sprintf("element %s is visible", in.Selector), nil
}
