package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/docqa"
	"github.com/tk103331/eino-browser-demo/document"
)

func newLoader(cfg config.Documents) (*document.Loader, error) {
	splitter, err := document.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("文档分割配置错误: %w", err)
	}
	return document.NewLoader(splitter), nil
}

var docqaCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Answer questions about loaded documents",
	Long:  `Load the sample document or the given files, answer the sample questions, then enter an interactive QA loop`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg := configFrom(cmd)
		out := cmd.OutOrStdout()

		files, _ := cmd.Flags().GetStringSlice("file")

		fmt.Fprintln(out, "🚀 eino + 硅基流动文档问答 Demo")
		rule(out, "=", 50)

		m, err := newChatModel(ctx, cfg, "default")
		if err != nil {
			fmt.Fprintln(out, "请检查配置文件和 API Key 设置")
			return err
		}
		loader, err := newLoader(cfg.Documents)
		if err != nil {
			return err
		}
		qa, err := docqa.New(ctx, m, loader, document.NewStore())
		if err != nil {
			return err
		}

		var count int
		if len(files) > 0 {
			count, err = qa.LoadFiles(ctx, files, func(path string, err error) {
				fmt.Fprintf(out, "❌ 加载文件失败 %s: %v\n", path, err)
			})
		} else {
			fmt.Fprintln(out, "📄 使用示例文档进行演示")
			rule(out, "-", 30)
			count, err = qa.Load(ctx, docqa.SampleText)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ 已加载 %d 个文档片段\n\n", count)

		if len(files) == 0 {
			fmt.Fprintln(out, "🤖 示例问答:")
			for i, q := range docqa.SampleQuestions {
				fmt.Fprintf(out, "\n%d. 问题: %s\n", i+1, q)
				answer, err := qa.Query(ctx, q)
				if err != nil {
					fmt.Fprintf(out, "❌ 发生错误: %v\n", err)
					continue
				}
				fmt.Fprintf(out, "   回答: %s\n", answer)
			}
		}

		fmt.Fprintln(out)
		rule(out, "=", 50)
		fmt.Fprintln(out, "💬 进入交互问答模式")
		fmt.Fprintln(out, "您可以询问关于已加载文档的任何问题")
		fmt.Fprintln(out, "输入 'quit' 或 'exit' 退出")
		fmt.Fprintln(out)

		repl(ctx, cmd, "👤 您的问题: ", func(line string) error {
			answer, err := qa.Query(ctx, line)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "🤖 AI: %s\n\n", answer)
			return nil
		})
		return nil
	},
}

func init() {
	RootCmd.AddCommand(docqaCmd)
	docqaCmd.Flags().StringSliceP("file", "f", nil, "要加载的文档路径，可重复或用逗号分隔")
}
