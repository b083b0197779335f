package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tk103331/eino-browser-demo/chains"
	"github.com/tk103331/eino-browser-demo/ui/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the model",
	Long:  `Start a chat session with the configured model. The REPL answers through a prompt template chain; --tui opens a streaming terminal UI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := configFrom(cmd)
		out := cmd.OutOrStdout()

		// 获取参数
		modelName, _ := cmd.Flags().GetString("model")
		system, _ := cmd.Flags().GetString("system")
		tui, _ := cmd.Flags().GetBool("tui")

		fmt.Fprintln(out, "🚀 eino + 硅基流动聊天 Demo")
		rule(out, "=", 50)

		m, err := newChatModel(ctx, cfg, modelName)
		if err != nil {
			fmt.Fprintln(out, "请检查配置文件和 API Key 设置")
			return err
		}

		if tui {
			app := chat.NewApp(ctx, "eino Chat", chat.ModelBackend{Model: m, System: system})
			if err := app.Run(); err != nil {
				return fmt.Errorf("运行聊天界面失败: %w", err)
			}
			return nil
		}

		chain, err := chains.NewChat(ctx, m)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "✅ LLM 初始化成功")
		fmt.Fprintln(out)
		fmt.Fprintln(out, "💬 开始聊天（输入 'quit' 或 'exit' 退出）")
		fmt.Fprintln(out)

		repl(ctx, cmd, "👤 您: ", func(line string) error {
			reply, err := chain.Invoke(ctx, map[string]any{"question": line})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "🤖 AI: %s\n\n", strings.TrimSpace(reply.Content))
			return nil
		})
		return nil
	},
}

func init() {
	// 添加 chat 子命令到根命令
	RootCmd.AddCommand(chatCmd)

	// 为 chat 子命令添加参数
	chatCmd.Flags().StringP("model", "m", "default", "指定要聊天的Model，default 为硅基流动配置")
	chatCmd.Flags().StringP("system", "s", "", "TUI 模式下的系统提示词")
	chatCmd.Flags().Bool("tui", false, "使用终端界面")
}
