package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// MessageType 消息类型
type MessageType int

const (
	UserMessage MessageType = iota
	AssistantMessage
	ToolStartMessage
	ToolEndMessage
	ErrorMessage
)

const maxToolResultRunes = 200

// Message 表示界面上的一条记录
type Message struct {
	Type    MessageType
	Content string
	Name    string // 工具名称（仅用于工具消息）
}

// 消息类型定义
type (
	ResponseMsg    string
	StreamChunkMsg string
	ErrorMsg       string
	ToolStartMsg   struct {
		Name      string
		Arguments string
	}
	ToolEndMsg struct {
		Name   string
		Result string
		Err    string
	}
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#0099ff")).Bold(true)
	toolStartStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00")).Bold(true)
	toolEndStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aa00")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")).Bold(true)
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	inputBorder    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#666666"))
)

// ViewModel 是聊天界面的模型。消息只追加，不修改。
type ViewModel struct {
	title     string
	messages  []Message
	input     textarea.Model
	scroll    int
	width     int
	height    int
	waiting   bool
	streaming string
	renderer  *glamour.TermRenderer
	onSend    func(string)
}

// NewViewModel onSend 在用户提交一条消息后调用，必须立即返回
func NewViewModel(title string, onSend func(string)) ViewModel {
	renderer, _ := glamour.NewTermRenderer(glamour.WithAutoStyle())

	ta := textarea.New()
	ta.Placeholder = "输入消息..."
	ta.ShowLineNumbers = false
	ta.SetHeight(1)
	ta.CharLimit = 0
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.Focus()

	return ViewModel{
		title:    title,
		input:    ta,
		width:    80,
		height:   24,
		renderer: renderer,
		onSend:   onSend,
	}
}

// Messages returns the transcript shown so far
func (m ViewModel) Messages() []Message {
	return m.messages
}

// Waiting reports whether a reply is in flight
func (m ViewModel) Waiting() bool {
	return m.waiting
}

// Init 初始化模型
func (m ViewModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update 处理消息更新
func (m ViewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.SetWidth(max(msg.Width-4, 10))
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			m.scroll++
			return m, nil
		case tea.KeyDown:
			if m.scroll > 0 {
				m.scroll--
			}
			return m, nil
		case tea.KeyEnter:
			if msg.Alt {
				break
			}
			return m.submit(), nil
		}
		if m.waiting {
			// 等待响应时不接受输入
			return m, nil
		}

	case StreamChunkMsg:
		m.streaming += string(msg)
		return m, nil

	case ResponseMsg:
		content := string(msg)
		if content == "" {
			content = m.streaming
		}
		m.streaming = ""
		m.waiting = false
		m.messages = append(m.messages, Message{Type: AssistantMessage, Content: content})
		return m, nil

	case ToolStartMsg:
		content := fmt.Sprintf("🔧 调用工具: %s", msg.Name)
		if msg.Arguments != "" && msg.Arguments != "{}" {
			content += fmt.Sprintf("\n参数: %s", msg.Arguments)
		}
		m.flushStreaming()
		m.messages = append(m.messages, Message{Type: ToolStartMessage, Content: content, Name: msg.Name})
		return m, nil

	case ToolEndMsg:
		var content string
		if msg.Err != "" {
			content = fmt.Sprintf("❌ 工具 %s 执行失败: %s", msg.Name, msg.Err)
		} else {
			content = fmt.Sprintf("✅ 工具 %s 完成", msg.Name)
			if r := strings.TrimSpace(msg.Result); r != "" {
				content += "\n结果: " + truncate(r, maxToolResultRunes)
			}
		}
		m.messages = append(m.messages, Message{Type: ToolEndMessage, Content: content, Name: msg.Name})
		return m, nil

	case ErrorMsg:
		m.flushStreaming()
		m.waiting = false
		m.messages = append(m.messages, Message{Type: ErrorMessage, Content: string(msg)})
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m ViewModel) submit() ViewModel {
	text := strings.TrimSpace(m.input.Value())
	if m.waiting || text == "" {
		return m
	}
	m.input.Reset()
	m.messages = append(m.messages, Message{Type: UserMessage, Content: text})
	m.waiting = true
	m.scroll = 0
	if m.onSend != nil {
		m.onSend(text)
	}
	return m
}

// flushStreaming keeps partial output when a tool call or an error interrupts it
func (m *ViewModel) flushStreaming() {
	if m.streaming == "" {
		return
	}
	m.messages = append(m.messages, Message{Type: AssistantMessage, Content: m.streaming})
	m.streaming = ""
}

func (m ViewModel) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content
	}
	rendered, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimSpace(rendered)
}

func (m ViewModel) renderMessage(msg Message) string {
	switch msg.Type {
	case UserMessage:
		return userStyle.Render("You: ") + msg.Content
	case AssistantMessage:
		return assistantStyle.Render("AI: ") + m.renderMarkdown(msg.Content)
	case ToolStartMessage:
		return toolStartStyle.Render(msg.Content)
	case ToolEndMessage:
		return toolEndStyle.Render(msg.Content)
	default:
		return errorStyle.Render("❌ ") + msg.Content
	}
}

// View 渲染界面
func (m ViewModel) View() string {
	lines := []string{fmt.Sprintf("=== %s ===", m.title), ""}
	for _, msg := range m.messages {
		lines = append(lines, strings.Split(m.renderMessage(msg), "\n")...)
		lines = append(lines, "")
	}
	if m.streaming != "" {
		lines = append(lines, strings.Split(assistantStyle.Render("AI: ")+m.streaming, "\n")...)
		lines = append(lines, "")
	}
	if m.waiting {
		lines = append(lines, "🤖 AI 正在思考...", "")
	}

	// 为输入框和帮助信息留出空间
	visible := max(m.height-6, 1)
	end := len(lines) - m.scroll
	end = max(min(end, len(lines)), min(visible, len(lines)))
	start := max(end-visible, 0)

	help := helpStyle.Render("Enter 发送 · Alt+Enter 换行 · ↑/↓ 滚动 · Ctrl+C 退出")
	return strings.Join(lines[start:end], "\n") + "\n" + inputBorder.Render(m.input.View()) + "\n" + help
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
