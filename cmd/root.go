package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/cloudwego/eino-ext/callbacks/langfuse"
	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/logger"
)

var (
	configPath string
	logFile    string
	debug      bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:           "eino-browser-demo",
	Short:         "SiliconFlow + eino browser automation demos",
	Long:          `Chat, document QA and browser automation demos built on eino, chromedp and Playwright MCP`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rt := runtimeFrom(cmd)

		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}

		level := logger.INFO
		if debug {
			level = logger.DEBUG
		}
		if err := logger.Init(logFile, level); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠️ 日志初始化失败: %v\n", err)
		} else {
			rt.onClose(func() { _ = logger.Close() })
		}

		// 加载配置文件
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("加载配置文件失败: %w", err)
		}
		rt.cfg = cfg

		if cfg.Settings.Langfuse != nil {
			handler, flusher := langfuse.NewLangfuseHandler(cfg.Settings.Langfuse)
			callbacks.AppendGlobalHandlers(handler) // 设置langfuse为全局callback
			rt.onClose(flusher)
		}

		logger.Info("CLI", fmt.Sprintf("command %s started, config %s", cmd.Name(), configPath))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rt := &runtime{}
	err := RootCmd.ExecuteContext(withRuntime(ctx, rt))
	rt.close()
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".eino-browser-demo", "config.yml")
}

func init() {
	// 添加全局参数
	RootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "配置文件路径（不存在时只使用环境变量）")
	RootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "日志文件路径，默认 ~/.eino-browser-demo/app.log")
	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "输出调试日志")
}
