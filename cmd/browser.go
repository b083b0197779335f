package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/cobra"

	"github.com/tk103331/eino-browser-demo/agent"
	"github.com/tk103331/eino-browser-demo/browser"
)

var browserTasks = []string{
	"访问百度首页并搜索'人工智能'",
	"访问GitHub，搜索eino项目",
}

var browserSites = []struct {
	URL         string
	Description string
}{
	{"https://httpbin.org/html", "测试HTML页面"},
	{"https://example.com", "示例网站"},
	{"https://httpbin.org/json", "JSON API测试"},
}

var browserMenu = []menuOption{
	{"1", "任务规划演示"},
	{"2", "页面操作演示"},
	{"3", "交互式规划模式"},
	{"4", "执行模式（AI 直接操作浏览器）"},
	{"0", "运行所有演示"},
}

// printTaskResult renders an executed plan, or the raw reply when it could not be parsed
func printTaskResult(out io.Writer, report *agent.Report, err error) {
	var pe *agent.PlanError
	switch {
	case errors.As(err, &pe):
		fmt.Fprintf(out, "❌ 无法解析执行计划: %v\n", pe.Err)
		fmt.Fprintf(out, "AI 回复:\n%s\n", pe.Reply)
	case err != nil:
		fmt.Fprintf(out, "❌ 任务执行失败: %v\n", err)
	default:
		fmt.Fprintln(out, report.String())
	}
}

type browserDemo struct {
	cmd       *cobra.Command
	out       io.Writer
	assistant *browser.Assistant
	shotDir   string
}

func (d *browserDemo) planning(ctx context.Context) {
	fmt.Fprintln(d.out, "🌐 浏览器任务规划演示")
	rule(d.out, "-", 40)
	fmt.Fprintln(d.out, "🤖 AI 浏览器助手准备就绪")
	fmt.Fprintln(d.out)

	for i, task := range browserTasks {
		fmt.Fprintf(d.out, "📋 任务 %d: %s\n", i+1, task)
		result, err := d.assistant.PlanTask(ctx, task)
		if err != nil {
			fmt.Fprintf(d.out, "❌ 任务执行失败: %v\n\n", err)
			continue
		}
		fmt.Fprintln(d.out, result)
		fmt.Fprintln(d.out)
		rule(d.out, "=", 50)
	}
}

func (d *browserDemo) navigation(ctx context.Context) {
	fmt.Fprintln(d.out, "🔍 简单页面操作演示")
	rule(d.out, "-", 40)

	for _, site := range browserSites {
		fmt.Fprintf(d.out, "\n🌐 访问: %s (%s)\n", site.Description, site.URL)

		text, err := d.assistant.NavigateAndExtract(ctx, site.URL, browser.ExtractText)
		if err != nil {
			fmt.Fprintf(d.out, "❌ 访问失败: %v\n", err)
			continue
		}
		fmt.Fprintln(d.out, "📄 页面文本:")
		fmt.Fprintln(d.out, browser.Truncate(text, 500))

		links, err := d.assistant.NavigateAndExtract(ctx, site.URL, browser.ExtractLinks)
		if err != nil {
			fmt.Fprintf(d.out, "❌ 访问失败: %v\n", err)
			continue
		}
		fmt.Fprintln(d.out, "\n🔗 页面链接:")
		fmt.Fprintln(d.out, browser.Truncate(links, 300))
		fmt.Fprintln(d.out)
		rule(d.out, "-", 30)
	}
}

func (d *browserDemo) interactive(ctx context.Context) {
	fmt.Fprintln(d.out)
	rule(d.out, "=", 50)
	fmt.Fprintln(d.out, "🤖 交互式 AI 浏览器助手")
	fmt.Fprintln(d.out, "您可以描述想要执行的浏览器任务，AI 将为您规划执行步骤")
	fmt.Fprintln(d.out, "输入 'quit' 或 'exit' 退出")
	fmt.Fprintln(d.out)

	repl(ctx, d.cmd, "👤 请描述您的浏览器任务: ", func(task string) error {
		fmt.Fprintln(d.out, "🤖 AI 正在分析任务...")
		result, err := d.assistant.PlanTask(ctx, task)
		if err != nil {
			return err
		}
		fmt.Fprintln(d.out, result)
		return nil
	})
}

func (d *browserDemo) execute(ctx context.Context, m model.BaseChatModel) {
	fmt.Fprintln(d.out)
	rule(d.out, "=", 50)
	fmt.Fprintln(d.out, "🤖 AI 浏览器执行模式")
	fmt.Fprintln(d.out, "描述任务，AI 会生成执行计划并直接操作本地浏览器")
	fmt.Fprintln(d.out, "输入 'quit' 或 'exit' 退出")
	fmt.Fprintln(d.out)

	backend := agent.NewToolkitBackend(d.assistant.Toolkit(), d.shotDir)
	planner := agent.NewPlanner(m, agent.NewDispatcher(backend))
	repl(ctx, d.cmd, "👤 请描述您的浏览器任务: ", func(task string) error {
		fmt.Fprintln(d.out, "🤖 AI 正在规划并执行...")
		report, err := planner.ExecuteTask(ctx, task)
		printTaskResult(d.out, report, err)
		return nil
	})
}

var browserCmd = &cobra.Command{
	Use:   "browser",
	Short: "Browser automation demos on a local Chrome",
	Long:  `Plan browser tasks with the model, extract page content, or let the model drive a local Chrome through chromedp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := configFrom(cmd)
		out := cmd.OutOrStdout()

		preset, _ := cmd.Flags().GetString("choice")
		shotDir, _ := cmd.Flags().GetString("screenshots")

		fmt.Fprintln(out, "🚀 eino + 硅基流动 + chromedp 浏览器操作 Demo")
		rule(out, "=", 60)
		fmt.Fprintln(out, "🛠️ 浏览器工具包")
		for _, op := range browser.Descriptions() {
			fmt.Fprintf(out, "  • %s: %s\n", op.Name, op.Description)
		}
		fmt.Fprintln(out, "\n⚠️ 注意事项:")
		fmt.Fprintln(out, "  • 请遵守网站的robots.txt和使用条款")
		fmt.Fprintln(out, "  • 避免对网站造成过大负载")
		fmt.Fprintln(out)

		choice, err := choose("选择演示模式", browserMenu, preset)
		if err != nil {
			return err
		}

		m, err := newChatModel(ctx, cfg, "default")
		if err != nil {
			fmt.Fprintln(out, "请检查配置文件和 API Key 设置")
			return err
		}

		toolkit := browser.NewToolkit(cfg.Browser)
		defer toolkit.Close()

		d := &browserDemo{
			cmd:       cmd,
			out:       out,
			assistant: browser.NewAssistant(m, toolkit),
			shotDir:   shotDir,
		}

		switch choice {
		case "1":
			d.planning(ctx)
		case "2":
			d.navigation(ctx)
		case "3":
			d.interactive(ctx)
		case "4":
			d.execute(ctx, m)
		case "0":
			d.planning(ctx)
			d.navigation(ctx)
			d.interactive(ctx)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(browserCmd)
	browserCmd.Flags().StringP("choice", "c", "", "直接选择演示模式 (0-4)")
	browserCmd.Flags().String("screenshots", "screenshots", "执行模式下截图保存目录")
}
