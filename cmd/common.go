package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/cobra"

	"github.com/tk103331/eino-browser-demo/config"
	"github.com/tk103331/eino-browser-demo/models"
)

// runtime carries what PersistentPreRunE prepared for the running command
type runtime struct {
	cfg     *config.Config
	closers []func()
}

type runtimeKey struct{}

func withRuntime(ctx context.Context, rt *runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

func runtimeFrom(cmd *cobra.Command) *runtime {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if rt, ok := ctx.Value(runtimeKey{}).(*runtime); ok {
		return rt
	}
	rt := &runtime{}
	cmd.SetContext(withRuntime(ctx, rt))
	return rt
}

func (rt *runtime) onClose(f func()) {
	rt.closers = append(rt.closers, f)
}

// close runs the registered closers in reverse order
func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}

func configFrom(cmd *cobra.Command) *config.Config {
	if rt := runtimeFrom(cmd); rt.cfg != nil {
		return rt.cfg
	}
	return config.Default()
}

// newChatModel creates the named model. The default SiliconFlow model is
// validated first so a missing key fails before any network call.
func newChatModel(ctx context.Context, cfg *config.Config, name string) (model.ToolCallingChatModel, error) {
	if name == "" || name == "default" {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	m, err := models.NewFactory(cfg).CreateChatModel(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("初始化失败: %w", err)
	}
	return m, nil
}

func isQuit(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quit", "exit", "退出":
		return true
	}
	return false
}

// lineReader reads REPL input one line at a time
type lineReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newLineReader(cmd *cobra.Command) *lineReader {
	s := bufio.NewScanner(cmd.InOrStdin())
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &lineReader{scanner: s, out: cmd.OutOrStdout()}
}

// Next prints prompt and returns the trimmed line. ok is false on EOF or a quit word.
func (r *lineReader) Next(prompt string) (line string, ok bool) {
	fmt.Fprint(r.out, prompt)
	if !r.scanner.Scan() {
		fmt.Fprintln(r.out)
		return "", false
	}
	line = strings.TrimSpace(r.scanner.Text())
	if isQuit(line) {
		return "", false
	}
	return line, true
}

// repl calls handle for every non-empty line until EOF, a quit word or ctx
// cancellation. A failing line is reported and the loop continues.
func repl(ctx context.Context, cmd *cobra.Command, prompt string, handle func(line string) error) {
	out := cmd.OutOrStdout()
	in := newLineReader(cmd)
	for ctx.Err() == nil {
		line, ok := in.Next(prompt)
		if !ok {
			break
		}
		if line == "" {
			continue
		}
		if err := handle(line); err != nil {
			fmt.Fprintf(out, "❌ 发生错误: %v\n\n", err)
		}
	}
	fmt.Fprintln(out, "👋 再见！")
}

type menuOption struct {
	Key   string
	Label string
}

var errInvalidChoice = errors.New("无效选择")

// choose returns preset when given, otherwise asks with a huh select
func choose(title string, options []menuOption, preset string) (string, error) {
	if preset != "" {
		for _, o := range options {
			if o.Key == preset {
				return preset, nil
			}
		}
		return "", fmt.Errorf("%w: %s", errInvalidChoice, preset)
	}

	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(fmt.Sprintf("%s. %s", o.Key, o.Label), o.Key)
	}
	var picked string
	if err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(title).
			Options(opts...).
			Value(&picked),
	)).Run(); err != nil {
		return "", err
	}
	return picked, nil
}

func rule(out io.Writer, ch string, n int) {
	fmt.Fprintln(out, strings.Repeat(ch, n))
}
