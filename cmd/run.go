package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tk103331/eino-browser-demo/agent"
	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/mcp"
	"github.com/tk103331/eino-browser-demo/models"
	"github.com/tk103331/eino-browser-demo/tools"
)

// newAgentFactory wires the model factory, tool registry and, when the named
// agent uses MCP servers, a connected MCP manager. Cleanup is registered on rt.
func newAgentFactory(ctx context.Context, rt *runtime, cfg *config.Config, agentName string) (*agent.Factory, error) {
	if err := mcp.ValidateServers(cfg.MCPServers, cfg.Agents); err != nil {
		return nil, err
	}

	registry := tools.NewRegistry(cfg)
	rt.onClose(registry.Close)

	// 只有用到MCP的Agent才连接服务器
	var source agent.MCPToolSource
	if a, ok := cfg.Agents[agentName]; ok && len(a.MCPServers) > 0 {
		manager := mcp.NewManager(cfg.MCPServers)
		if err := manager.Initialize(ctx); err != nil {
			return nil, fmt.Errorf("初始化MCP管理器失败: %w", err)
		}
		rt.onClose(func() { _ = manager.Close() })
		source = manager
	}

	return agent.NewFactory(cfg.Agents, models.NewFactory(cfg), registry, source), nil
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a configured agent once",
	Long:  `Run the configured ReAct agent with a single prompt and stream its answer`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := configFrom(cmd)
		out := cmd.OutOrStdout()

		// 获取参数
		agentName, _ := cmd.Flags().GetString("agent")
		prompt, _ := cmd.Flags().GetString("prompt")

		factory, err := newAgentFactory(ctx, runtimeFrom(cmd), cfg, agentName)
		if err != nil {
			return err
		}
		a, err := factory.CreateAgent(agentName)
		if err != nil {
			return fmt.Errorf("创建Agent失败: %w", err)
		}

		fmt.Fprintf(out, "运行Agent: %s 使用提示词: %s\n", agentName, prompt)
		_, err = a.Stream(ctx, prompt,
			func(chunk string) { fmt.Fprint(out, chunk) },
			func(ev agent.ToolEvent) {
				switch {
				case !ev.Done:
					fmt.Fprintf(out, "\n🔧 调用工具: %s %s\n", ev.Name, ev.Arguments)
				case ev.Err != nil:
					fmt.Fprintf(out, "❌ 工具执行失败: %v\n", ev.Err)
				default:
					fmt.Fprintf(out, "✅ 工具执行结果: %s\n", ev.Result)
				}
			})
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("运行Agent失败: %w", err)
		}
		return nil
	},
}

func init() {
	// 添加 run 子命令到根命令
	RootCmd.AddCommand(runCmd)

	// 为 run 子命令添加参数
	runCmd.Flags().StringP("agent", "a", "", "指定要运行的Agent")
	runCmd.Flags().StringP("prompt", "p", "", "指定Agent的提示词")

	// 设置必需的参数
	_ = runCmd.MarkFlagRequired("agent")
	_ = runCmd.MarkFlagRequired("prompt")
}
