package custom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	"github.com/tk103331/eino-browser-demo/config"
)

// ExecTool runs a command line rendered from a template. The command is
// split on whitespace and executed without a shell.
type ExecTool struct {
	info    *schema.ToolInfo
	cmd     string
	workDir string
	env     map[string]string
	timeout time.Duration
}

// NewExecTool 创建执行工具，必须配置cmd
func NewExecTool(name string, cfg config.Tool) (*ExecTool, error) {
	t := &ExecTool{
		info:    toolInfo(name, cfg.Description, "执行工具", cfg.Params),
		env:     stringMap(cfg.Config, "env"),
		timeout: defaultTimeout,
	}
	if v, ok := cfg.Config["cmd"]; ok {
		t.cmd = v.String()
	}
	if v, ok := cfg.Config["workdir"]; ok {
		t.workDir = v.String()
	}
	if v, ok := cfg.Config["timeout"]; ok && v.Int() > 0 {
		t.timeout = time.Duration(v.Int()) * time.Second
	}

	if t.cmd == "" {
		return nil, fmt.Errorf("exec工具 %s 必须配置cmd属性", name)
	}
	return t, nil
}

func (e *ExecTool) Info(_ context.Context) (*schema.ToolInfo, error) {
	return e.info, nil
}

func (e *ExecTool) InvokableRun(ctx context.Context, argumentsInJSON string, _ ...tool.Option) (string, error) {
	args, err := parseArgs(argumentsInJSON)
	if err != nil {
		return "", err
	}

	line, err := render("cmd", e.cmd, args)
	if err != nil {
		return "", fmt.Errorf("渲染命令模板失败: %w", err)
	}
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", errors.New("命令为空")
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)

	if e.workDir != "" {
		dir, err := expandHome(e.workDir)
		if err != nil {
			return "", err
		}
		cmd.Dir = dir
	}

	cmd.Env = os.Environ()
	keys := make([]string, 0, len(e.env))
	for k := range e.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := render("env", e.env[k], args)
		if err != nil {
			return "", fmt.Errorf("渲染环境变量模板失败: %w", err)
		}
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := fmt.Sprintf("命令执行失败: %v", err)
		if stderr.Len() > 0 {
			msg += "\nstderr: " + stderr.String()
		}
		if stdout.Len() > 0 {
			msg += "\nstdout: " + stdout.String()
		}
		return "", errors.New(msg)
	}

	result := stdout.String()
	if stderr.Len() > 0 {
		result += "\n[警告] " + stderr.String()
	}
	return result, nil
}

func expandHome(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("获取用户主目录失败: %w", err)
	}
	return filepath.Join(home, dir[2:]), nil
}
