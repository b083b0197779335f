package mcp

import (
	"errors"
	"fmt"
)

// MCP related error definitions
var (
	// ErrMCPNotInitialized manager used before Initialize
	ErrMCPNotInitialized = errors.New("MCP manager not initialized")

	// ErrServerNotFound MCP server not found
	ErrServerNotFound = errors.New("MCP server not found")

	// ErrToolNotFound MCP tool not found
	ErrToolNotFound = errors.New("MCP tool not found")

	// ErrInvalidConfig Invalid MCP configuration
	ErrInvalidConfig = errors.New("invalid MCP configuration")

	// ErrConnectionFailed MCP connection failed
	ErrConnectionFailed = errors.New("MCP connection failed")

	// ErrNoCodegenSession no codegen session is active
	ErrNoCodegenSession = errors.New("没有活跃的代码生成会话")
)

// MCPError MCP error wrapper
type MCPError struct {
	Op     string // Operation name
	Server string // Server name
	Tool   string // Tool name
	Err    error  // Original error
}

func (e *MCPError) Error() string {
	switch {
	case e.Server != "" && e.Tool != "":
		return fmt.Sprintf("MCP error [%s] server:%s tool:%s - %v", e.Op, e.Server, e.Tool, e.Err)
	case e.Server != "":
		return fmt.Sprintf("MCP error [%s] server:%s - %v", e.Op, e.Server, e.Err)
	case e.Tool != "":
		return fmt.Sprintf("MCP error [%s] tool:%s - %v", e.Op, e.Tool, e.Err)
	default:
		return fmt.Sprintf("MCP error [%s] - %v", e.Op, e.Err)
	}
}

func (e *MCPError) Unwrap() error {
	return e.Err
}

// NewMCPError creates new MCP error
func NewMCPError(op, server, tool string, err error) *MCPError {
	return &MCPError{
		Op:     op,
		Server: server,
		Tool:   tool,
		Err:    err,
	}
}

// IsConnectionError checks if it's a connection error
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnectionFailed)
}

// IsConfigError checks if it's a configuration error
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsToolNotFound reports a call to a tool the server does not expose
func IsToolNotFound(err error) bool {
	return errors.Is(err, ErrToolNotFound)
}
