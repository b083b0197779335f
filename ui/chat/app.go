// Package chat is the terminal chat session opened by `chat --tui`.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tk103331/eino-browser-demo/agent"
	"github.com/tk103331/eino-browser-demo/logger"
)

// Backend produces the assistant reply for the conversation so far.
// history never contains a system message.
type Backend interface {
	Reply(ctx context.Context, history []*schema.Message, onChunk func(string), onTool func(agent.ToolEvent)) (string, error)
}

// ModelBackend streams a plain chat model
type ModelBackend struct {
	Model  model.BaseChatModel
	System string
}

func (b ModelBackend) Reply(ctx context.Context, history []*schema.Message, onChunk func(string), _ func(agent.ToolEvent)) (string, error) {
	msgs := make([]*schema.Message, 0, len(history)+1)
	if b.System != "" {
		msgs = append(msgs, schema.SystemMessage(b.System))
	}
	msgs = append(msgs, history...)

	sr, err := b.Model.Stream(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("AI响应错误: %w", err)
	}
	defer sr.Close()

	var sb strings.Builder
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("流式响应错误: %w", err)
		}
		if chunk.Content == "" {
			continue
		}
		sb.WriteString(chunk.Content)
		if onChunk != nil {
			onChunk(chunk.Content)
		}
	}
	return sb.String(), nil
}

// AgentBackend runs a ReAct agent, reporting its tool calls
type AgentBackend struct {
	Agent *agent.ReactAgent
}

func (b AgentBackend) Reply(ctx context.Context, history []*schema.Message, onChunk func(string), onTool func(agent.ToolEvent)) (string, error) {
	return b.Agent.StreamHistory(ctx, history, onChunk, onTool)
}

// App 聊天应用。对话历史在会话内只追加。
type App struct {
	ctx     context.Context
	backend Backend
	program *tea.Program
	emit    func(tea.Msg)

	mu      sync.Mutex
	history []*schema.Message
}

// NewApp 创建聊天应用
func NewApp(ctx context.Context, title string, backend Backend) *App {
	app := &App{ctx: ctx, backend: backend}
	app.program = tea.NewProgram(NewViewModel(title, app.send), tea.WithAltScreen(), tea.WithContext(ctx))
	app.emit = app.program.Send
	return app
}

// Run 运行聊天界面，直到用户退出
func (app *App) Run() error {
	_, err := app.program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && app.ctx.Err() != nil {
		return nil
	}
	return err
}

// History returns a copy of the conversation
func (app *App) History() []*schema.Message {
	app.mu.Lock()
	defer app.mu.Unlock()
	return append([]*schema.Message(nil), app.history...)
}

func (app *App) send(text string) {
	go app.reply(text)
}

// reply runs one turn. Only completed turns are added to the history.
func (app *App) reply(text string) {
	app.mu.Lock()
	turn := append(append([]*schema.Message(nil), app.history...), schema.UserMessage(text))
	app.mu.Unlock()

	logger.Debug("CHAT", fmt.Sprintf("sending turn %d", len(turn)))
	out, err := app.backend.Reply(app.ctx, turn,
		func(chunk string) { app.emit(StreamChunkMsg(chunk)) },
		func(ev agent.ToolEvent) {
			if !ev.Done {
				app.emit(ToolStartMsg{Name: ev.Name, Arguments: ev.Arguments})
				return
			}
			end := ToolEndMsg{Name: ev.Name, Result: ev.Result}
			if ev.Err != nil {
				end.Err = ev.Err.Error()
			}
			app.emit(end)
		})
	if err != nil {
		logger.Error("CHAT", err.Error())
		app.emit(ErrorMsg(err.Error()))
		return
	}

	app.mu.Lock()
	app.history = append(app.history, schema.UserMessage(text), schema.AssistantMessage(out, nil))
	app.mu.Unlock()
	app.emit(ResponseMsg(out))
}
