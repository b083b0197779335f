package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tk103331/eino-browser-demo/ui/chat"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Start an interactive agent session",
	Long:  `Start an interactive TUI session with a configured ReAct agent. Tool calls are shown as they happen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := configFrom(cmd)
		out := cmd.OutOrStdout()

		agentName, _ := cmd.Flags().GetString("agent")
		if agentName == "" {
			factory, err := newAgentFactory(ctx, runtimeFrom(cmd), cfg, "")
			if err != nil {
				return err
			}
			names := factory.Names()
			if len(names) == 0 {
				return fmt.Errorf("配置文件中没有Agent")
			}
			fmt.Fprintf(out, "可用的Agent: %s\n", strings.Join(names, ", "))
			return fmt.Errorf("请使用 --agent 指定Agent")
		}

		factory, err := newAgentFactory(ctx, runtimeFrom(cmd), cfg, agentName)
		if err != nil {
			return err
		}
		a, err := factory.CreateAgent(agentName)
		if err != nil {
			return fmt.Errorf("创建Agent失败: %w", err)
		}
		// 先初始化，错误在进入界面前显示
		if err := a.Init(ctx); err != nil {
			return err
		}

		app := chat.NewApp(ctx, "Agent "+agentName, chat.AgentBackend{Agent: a})
		if err := app.Run(); err != nil {
			return fmt.Errorf("运行交互界面失败: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(agentCmd)
	agentCmd.Flags().StringP("agent", "a", "", "指定要使用的Agent")
}
