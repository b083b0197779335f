package mcp

import (
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tk103331/eino-browser-demo/config"
)

// 传输类型
const (
	TypeStdio          = "stdio"
	TypeSSE            = "sse"
	TypeStreamableHTTP = "streamable-http"
)

// normalizeType 统一传输类型名称，空值视为 stdio
func normalizeType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "", "stdio":
		return TypeStdio
	case "sse":
		return TypeSSE
	case "streamable-http", "http":
		return TypeStreamableHTTP
	default:
		return strings.ToLower(t)
	}
}

// ValidateServers 验证MCP服务器配置，以及Agent对服务器的引用
func ValidateServers(servers map[string]config.MCPServer, agents map[string]config.Agent) error {
	for name, server := range servers {
		if err := ValidateServer(name, server); err != nil {
			return err
		}
	}

	for agentName, agent := range agents {
		for _, serverName := range agent.MCPServers {
			if _, ok := servers[serverName]; !ok {
				return NewMCPError("validate", serverName, "",
					fmt.Errorf("agent %s 引用了不存在的MCP服务器: %w", agentName, ErrServerNotFound))
			}
		}
	}
	return nil
}

// ValidateServer 验证单个MCP服务器配置
func ValidateServer(name string, server config.MCPServer) error {
	if strings.TrimSpace(name) == "" {
		return NewMCPError("validate", name, "", fmt.Errorf("MCP服务器名称不能为空: %w", ErrInvalidConfig))
	}

	switch normalizeType(server.Type) {
	case TypeStdio:
		if server.URL != "" {
			return NewMCPError("validate", name, "", fmt.Errorf("stdio 服务器不能指定url: %w", ErrInvalidConfig))
		}
		return validateCommand(name, server.Cmd)
	case TypeSSE, TypeStreamableHTTP:
		if server.Cmd != "" {
			return NewMCPError("validate", name, "", fmt.Errorf("%s 服务器不能指定cmd: %w", server.Type, ErrInvalidConfig))
		}
		return validateURL(name, server.URL)
	default:
		return NewMCPError("validate", name, "", fmt.Errorf("不支持的MCP服务器类型 %q: %w", server.Type, ErrInvalidConfig))
	}
}

// validateCommand 只检查命令本身，参数在 args 中配置
func validateCommand(name, command string) error {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return NewMCPError("validate", name, "", fmt.Errorf("stdio 服务器必须指定cmd: %w", ErrInvalidConfig))
	}
	if filepath.IsAbs(parts[0]) || strings.ContainsRune(parts[0], filepath.Separator) {
		return nil
	}
	if _, err := exec.LookPath(parts[0]); err != nil {
		return NewMCPError("validate", name, "", fmt.Errorf("命令不存在: %s: %w", parts[0], ErrInvalidConfig))
	}
	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return NewMCPError("validate", name, "", fmt.Errorf("服务器必须指定url: %w", ErrInvalidConfig))
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return NewMCPError("validate", name, "",
			fmt.Errorf("无效的URL格式: %s，必须以http://或https://开头: %w", raw, ErrInvalidConfig))
	}
	return nil
}
