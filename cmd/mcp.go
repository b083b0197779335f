package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tk103331/eino-browser-demo/agent"
	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/logger"
	"github.com/tk103331/eino-browser-demo/mcp"
)

var mcpMenu = []menuOption{
	{"1", "MCP 基础操作演示"},
	{"2", "MCP 智能任务演示"},
	{"3", "MCP 高级功能演示"},
	{"4", "MCP 代码生成演示"},
	{"5", "交互式 MCP 模式"},
	{"0", "运行所有演示"},
}

var mcpSmartTasks = []string{
	"访问 example.com，获取页面文本，然后截图保存",
}

// interactive command kinds
const (
	mcpNavigate   = "navigate"
	mcpScreenshot = "screenshot"
	mcpJS         = "js"
	mcpText       = "text"
	mcpHTML       = "html"
	mcpBack       = "back"
	mcpForward    = "forward"
	mcpTools      = "tools"
	mcpSmart      = "smart"
)

type mcpCommand struct {
	Kind string
	Arg  string
}

// parseMCPCommand maps an interactive line to a direct operation. Anything
// that is not a known prefix or keyword is a smart task.
func parseMCPCommand(line string) mcpCommand {
	line = strings.TrimSpace(line)
	for _, p := range []string{mcpNavigate, mcpScreenshot, mcpJS} {
		if strings.HasPrefix(line, p+":") {
			arg := strings.TrimSpace(line[len(p)+1:])
			if p == mcpScreenshot && arg == "" {
				arg = "screenshot"
			}
			return mcpCommand{Kind: p, Arg: arg}
		}
	}
	switch k := strings.ToLower(line); k {
	case mcpText, mcpHTML, mcpBack, mcpForward, mcpTools:
		return mcpCommand{Kind: k}
	}
	return mcpCommand{Kind: mcpSmart, Arg: line}
}

type mcpDemo struct {
	cmd     *cobra.Command
	out     io.Writer
	cfg     *config.Config
	pw      *mcp.Playwright
	codegen string

	planner *agent.Planner
}

// smartPlanner creates the planner on first use; basic operations work without an API key
func (d *mcpDemo) smartPlanner(ctx context.Context) (*agent.Planner, error) {
	if d.planner != nil {
		return d.planner, nil
	}
	m, err := newChatModel(ctx, d.cfg, "default")
	if err != nil {
		return nil, err
	}
	d.planner = agent.NewPlanner(m, agent.NewDispatcher(agent.NewMCPBackend(d.pw)))
	return d.planner, nil
}

func (d *mcpDemo) print(result string, err error) {
	if err != nil {
		fmt.Fprintf(d.out, "❌ 操作失败: %v\n", err)
		return
	}
	fmt.Fprintln(d.out, result)
}

func (d *mcpDemo) basic(ctx context.Context) {
	fmt.Fprintln(d.out, "🔧 MCP Playwright 基础操作演示")
	rule(d.out, "-", 40)

	fmt.Fprintln(d.out, "\n🔄 执行: 导航到百度")
	d.print(d.pw.Navigate(ctx, "https://www.baidu.com"))
	fmt.Fprintln(d.out, "\n🔄 执行: 获取页面文本")
	d.print(d.pw.VisibleText(ctx))
	fmt.Fprintln(d.out, "\n🔄 执行: 截图")
	d.print(d.pw.Screenshot(ctx, "baidu_homepage", true))
}

func (d *mcpDemo) smart(ctx context.Context) {
	fmt.Fprintln(d.out, "🤖 MCP 智能浏览器操作演示")
	rule(d.out, "-", 40)

	planner, err := d.smartPlanner(ctx)
	if err != nil {
		fmt.Fprintf(d.out, "❌ MCP 智能操作演示失败: %v\n", err)
		return
	}
	for i, task := range mcpSmartTasks {
		fmt.Fprintf(d.out, "\n🎯 智能任务 %d: %s\n", i+1, task)
		rule(d.out, "=", 50)
		report, err := planner.ExecuteTask(ctx, task)
		printTaskResult(d.out, report, err)
		fmt.Fprintln(d.out)
	}
}

func (d *mcpDemo) advanced(ctx context.Context) {
	fmt.Fprintln(d.out, "⚡ MCP Playwright 高级功能演示")
	rule(d.out, "-", 40)

	fmt.Fprintln(d.out, "🌐 导航到测试页面...")
	if _, err := d.pw.Navigate(ctx, "https://httpbin.org/html"); err != nil {
		fmt.Fprintf(d.out, "❌ MCP 高级功能演示失败: %v\n", err)
		return
	}

	fmt.Fprintln(d.out, "\n🔧 测试: JavaScript 执行")
	d.print(d.pw.Evaluate(ctx, "document.title"))
	fmt.Fprintln(d.out, "\n🔧 测试: 控制台日志获取")
	d.print(d.pw.ConsoleLogs(ctx, "all", 10))
	fmt.Fprintln(d.out, "\n🔧 测试: 按键操作")
	d.print(d.pw.PressKey(ctx, "F12", ""))
}

func (d *mcpDemo) generateCode(ctx context.Context) {
	fmt.Fprintln(d.out, "📝 MCP Playwright 代码生成演示")
	rule(d.out, "-", 40)

	fmt.Fprintln(d.out, "🚀 开始代码生成会话...")
	result, err := d.pw.StartCodegen(ctx, d.codegen, "MCPDemo")
	if err != nil {
		fmt.Fprintf(d.out, "❌ MCP 代码生成演示失败: %v\n", err)
		return
	}
	fmt.Fprintln(d.out, result)

	steps := []struct {
		name string
		run  func() (string, error)
	}{
		{"navigate_to https://www.baidu.com", func() (string, error) { return d.pw.Navigate(ctx, "https://www.baidu.com") }},
		{"fill_input #kw", func() (string, error) { return d.pw.Fill(ctx, "#kw", "Playwright") }},
		{"click_element #su", func() (string, error) { return d.pw.Click(ctx, "#su") }},
		{"take_screenshot search_result", func() (string, error) { return d.pw.Screenshot(ctx, "search_result", false) }},
	}
	fmt.Fprintln(d.out, "\n📋 执行操作（将被记录为测试代码）:")
	for _, s := range steps {
		fmt.Fprintf(d.out, "  🔄 %s\n", s.name)
		if _, err := s.run(); err != nil {
			fmt.Fprintf(d.out, "    ❌ 操作失败: %v\n", err)
		}
		// 等待页面响应
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}

	fmt.Fprintln(d.out, "\n📄 生成测试代码...")
	d.print(d.pw.EndCodegen(ctx))
}

func (d *mcpDemo) interactive(ctx context.Context) {
	fmt.Fprintln(d.out)
	rule(d.out, "=", 60)
	fmt.Fprintln(d.out, "🤖 交互式 MCP AI 浏览器助手")
	fmt.Fprintln(d.out, "支持的任务类型:")
	fmt.Fprintln(d.out, "  • 智能任务: '访问百度并搜索人工智能'")
	fmt.Fprintln(d.out, "  • 基础操作: 'navigate:https://www.baidu.com'")
	fmt.Fprintln(d.out, "  • 截图: 'screenshot:page_name'")
	fmt.Fprintln(d.out, "  • 获取文本: 'text'")
	fmt.Fprintln(d.out, "  • JavaScript: 'js:document.title'")
	fmt.Fprintln(d.out, "输入 'quit' 或 'exit' 退出")
	fmt.Fprintln(d.out, "输入 'tools' 查看可用工具")
	fmt.Fprintln(d.out)

	fmt.Fprintln(d.out, "🔧 获取可用工具...")
	tools, err := d.pw.ToolNames(ctx)
	if err != nil {
		fmt.Fprintf(d.out, "❌ 交互模式失败: %v\n", err)
		return
	}
	fmt.Fprintf(d.out, "✅ MCP 工具包含 %d 个工具\n", len(tools))

	repl(ctx, d.cmd, "👤 请输入命令或描述任务: ", func(line string) error {
		c := parseMCPCommand(line)
		if c.Kind == mcpTools {
			fmt.Fprintln(d.out, "🛠️ 可用工具:")
			for _, t := range tools {
				fmt.Fprintf(d.out, "  • %s\n", t)
			}
			return nil
		}

		fmt.Fprintln(d.out, "🤖 MCP AI 正在处理...")
		rule(d.out, "=", 50)
		defer func() {
			rule(d.out, "=", 50)
			fmt.Fprintln(d.out)
		}()

		var (
			result string
			err    error
		)
		switch c.Kind {
		case mcpNavigate:
			result, err = d.pw.Navigate(ctx, c.Arg)
		case mcpScreenshot:
			result, err = d.pw.Screenshot(ctx, c.Arg, true)
		case mcpJS:
			result, err = d.pw.Evaluate(ctx, c.Arg)
		case mcpText:
			result, err = d.pw.VisibleText(ctx)
		case mcpHTML:
			result, err = d.pw.VisibleHTML(ctx)
		case mcpBack:
			result, err = d.pw.GoBack(ctx)
		case mcpForward:
			result, err = d.pw.GoForward(ctx)
		default:
			planner, perr := d.smartPlanner(ctx)
			if perr != nil {
				return perr
			}
			report, terr := planner.ExecuteTask(ctx, c.Arg)
			printTaskResult(d.out, report, terr)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(d.out, result)
		return nil
	})
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Browser automation demos over Playwright MCP",
	Long:  `Drive a browser through the Playwright MCP server: direct operations, model planned tasks, code generation and an interactive mode`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := configFrom(cmd)
		out := cmd.OutOrStdout()

		preset, _ := cmd.Flags().GetString("choice")
		codegenDir, _ := cmd.Flags().GetString("codegen-dir")

		fmt.Fprintln(out, "🚀 eino + Playwright MCP 演示")
		rule(out, "=", 60)
		fmt.Fprintln(out, "⚙️ 环境要求:")
		fmt.Fprintln(out, "  📦 npm install -g @executeautomation/playwright-mcp-server")
		fmt.Fprintf(out, "  🔌 MCP 服务器: %s %s\n", cfg.PlaywrightMCP.Cmd, strings.Join(cfg.PlaywrightMCP.Args, " "))
		fmt.Fprintln(out)

		choice, err := choose("选择演示模式", mcpMenu, preset)
		if err != nil {
			return err
		}

		pw := mcp.NewPlaywright(cfg.PlaywrightMCP, nil)
		defer func() {
			if err := pw.Close(context.WithoutCancel(ctx)); err != nil {
				logger.Warn("MCP", fmt.Sprintf("close playwright: %v", err))
			}
		}()

		d := &mcpDemo{cmd: cmd, out: out, cfg: cfg, pw: pw, codegen: codegenDir}
		switch choice {
		case "1":
			d.basic(ctx)
		case "2":
			d.smart(ctx)
		case "3":
			d.advanced(ctx)
		case "4":
			d.generateCode(ctx)
		case "5":
			d.interactive(ctx)
		case "0":
			fmt.Fprintln(out, "\n🎬 运行所有演示...")
			for i, run := range []func(context.Context){d.basic, d.smart, d.advanced, d.generateCode} {
				if i > 0 {
					fmt.Fprintln(out)
					rule(out, "=", 60)
					fmt.Fprintln(out)
				}
				run(ctx)
			}
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringP("choice", "c", "", "直接选择演示模式 (0-5)")
	mcpCmd.Flags().String("codegen-dir", ".", "代码生成会话的输出目录")
}
