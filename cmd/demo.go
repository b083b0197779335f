package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/retriever"
	"github.com/spf13/cobra"

	"github.com/tk103331/eino-browser-demo/browser"
	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/docqa"
	"github.com/tk103331/eino-browser-demo/document"
	"github.com/tk103331/eino-browser-demo/llm"
	"github.com/tk103331/eino-browser-demo/models"
	"github.com/tk103331/eino-browser-demo/tools"
)

const demoQuery = "Eino 是什么"

func demoLLM(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "🤖 LLM 包装器演示")
	rule(out, "-", 30)
	fmt.Fprintf(out, "✅ 基础 URL: %s\n", cfg.LLM.BaseURL)
	fmt.Fprintf(out, "✅ 默认模型: %s\n", cfg.LLM.Model)
	fmt.Fprintf(out, "✅ 温度设置: %g\n", cfg.LLM.Temperature)
	fmt.Fprintf(out, "✅ 最大 Token: %d\n", cfg.LLM.MaxTokens)

	m, err := llm.NewChatModel(cfg.LLM)
	if err != nil {
		fmt.Fprintf(out, "❌ LLM 包装器演示失败: %v\n", err)
		return
	}
	fmt.Fprintf(out, "✅ LLM 实例创建成功，类型: %s\n", m.GetType())
}

func demoDocuments(ctx context.Context, out io.Writer) {
	fmt.Fprintln(out, "\n📄 文档加载器演示")
	rule(out, "-", 30)

	loader, err := newLoader(config.Documents{ChunkSize: 500, ChunkOverlap: 100})
	if err != nil {
		fmt.Fprintf(out, "❌ 文档加载器演示失败: %v\n", err)
		return
	}
	fmt.Fprintln(out, "✅ 文档加载器创建成功")

	docs, err := loader.LoadText(ctx, docqa.SampleText, "示例文档")
	if err != nil {
		fmt.Fprintf(out, "❌ 文档加载器演示失败: %v\n", err)
		return
	}
	fmt.Fprintf(out, "✅ 文档分割成功，共 %d 个片段\n", len(docs))

	store := document.NewStore()
	if _, err := store.Store(ctx, docs); err != nil {
		fmt.Fprintf(out, "❌ 文档加载器演示失败: %v\n", err)
		return
	}
	fmt.Fprintln(out, "✅ 文档已添加到向量存储")

	results, err := store.Retrieve(ctx, demoQuery, retriever.WithTopK(2))
	if err != nil {
		fmt.Fprintf(out, "❌ 文档加载器演示失败: %v\n", err)
		return
	}
	fmt.Fprintf(out, "✅ 搜索查询 '%s' 返回 %d 个结果\n", demoQuery, len(results))
	if len(results) > 0 {
		fmt.Fprintln(out, "📄 搜索结果预览:")
		for i, d := range results {
			preview := strings.Join(strings.Fields(d.Content), " ")
			fmt.Fprintf(out, "   %d. [%.2f] %s\n", i+1, d.Score(), browser.Truncate(preview, 100))
		}
	}
}

func demoComponents(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "\n🧩 组件概览")
	rule(out, "-", 30)
	fmt.Fprintf(out, "✅ 模型提供方: %s\n", strings.Join(models.ProviderTypes(), ", "))
	fmt.Fprintf(out, "✅ 工具类型: %s\n", strings.Join(tools.Types(), ", "))
	fmt.Fprintf(out, "✅ 已配置: %d 个模型, %d 个工具, %d 个Agent, %d 个MCP服务器\n",
		len(cfg.Models), len(cfg.Tools), len(cfg.Agents), len(cfg.MCPServers))
	fmt.Fprintf(out, "✅ 浏览器: headless=%t, 超时 %d 秒\n", cfg.Browser.Headless, cfg.Browser.Timeout)
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Offline walkthrough of the demo components",
	Long:  `Show the loaded configuration and run chunking and retrieval on the sample document. No network access is needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "🎯 eino + 硅基流动 Demo 功能演示")
		rule(out, "=", 50)

		demoLLM(out, cfg)
		demoDocuments(cmd.Context(), out)
		demoComponents(out, cfg)

		fmt.Fprintln(out)
		rule(out, "=", 50)
		fmt.Fprintln(out, "🎉 演示完成！")
		fmt.Fprintln(out, "\n💡 使用提示:")
		fmt.Fprintln(out, "1. 在 .env 文件中设置真实的硅基流动 API Key")
		fmt.Fprintln(out, "2. 运行 'eino-browser-demo chat' 进行聊天测试")
		fmt.Fprintln(out, "3. 运行 'eino-browser-demo docqa' 进行文档问答测试")
		fmt.Fprintln(out, "4. 运行 'eino-browser-demo browser' 或 'mcp' 体验浏览器操作")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(demoCmd)
}
