package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tk103331/eino-browser-demo/agent"
)

func typeText(m ViewModel, s string) ViewModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(ViewModel)
}

func press(m ViewModel, t tea.KeyType) ViewModel {
	next, _ := m.Update(tea.KeyMsg{Type: t})
	return next.(ViewModel)
}

func send(m ViewModel, msg tea.Msg) ViewModel {
	next, _ := m.Update(msg)
	return next.(ViewModel)
}

func TestViewModel_SubmitAndStream(t *testing.T) {
	var sent []string
	m := NewViewModel("Chat", func(s string) { sent = append(sent, s) })

	m = press(m, tea.KeyEnter)
	assert.Empty(t, sent, "blank input is not sent")

	m = typeText(m, "你好")
	m = press(m, tea.KeyEnter)
	assert.Equal(t, []string{"你好"}, sent)
	assert.True(t, m.Waiting())

	m = typeText(m, "again")
	m = press(m, tea.KeyEnter)
	assert.Len(t, sent, 1, "no second turn while waiting")

	m = send(m, StreamChunkMsg("Hel"))
	m = send(m, StreamChunkMsg("lo"))
	m = send(m, ResponseMsg(""))
	assert.False(t, m.Waiting())

	msgs := m.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, Message{Type: UserMessage, Content: "你好"}, msgs[0])
	assert.Equal(t, Message{Type: AssistantMessage, Content: "Hello"}, msgs[1])
	assert.Contains(t, m.View(), "You: ")
}

func TestViewModel_ToolsAndErrors(t *testing.T) {
	m := NewViewModel("Chat", nil)
	m = typeText(m, "q")
	m = press(m, tea.KeyEnter)

	m = send(m, StreamChunkMsg("partial"))
	m = send(m, ToolStartMsg{Name: "echo", Arguments: `{"text":"hi"}`})
	m = send(m, ToolEndMsg{Name: "echo", Result: "echo hi"})
	m = send(m, ToolEndMsg{Name: "boom", Err: "failed"})
	m = send(m, ErrorMsg("API 请求失败"))

	msgs := m.Messages()
	require.Len(t, msgs, 6)
	assert.Equal(t, "partial", msgs[1].Content)
	assert.Contains(t, msgs[2].Content, "调用工具: echo")
	assert.Contains(t, msgs[3].Content, "结果: echo hi")
	assert.Contains(t, msgs[4].Content, "❌ 工具 boom 执行失败: failed")
	assert.Equal(t, ErrorMessage, msgs[5].Type)
	assert.False(t, m.Waiting())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...", truncate("abcdefgh", 5))
}

type recordingBackend struct {
	seen [][]*schema.Message
	out  []string
	err  error
}

func (b *recordingBackend) Reply(_ context.Context, history []*schema.Message, onChunk func(string), onTool func(agent.ToolEvent)) (string, error) {
	b.seen = append(b.seen, history)
	if b.err != nil {
		return "", b.err
	}
	onTool(agent.ToolEvent{Name: "echo"})
	onTool(agent.ToolEvent{Name: "echo", Result: "ok", Done: true})
	out := b.out[len(b.seen)-1]
	onChunk(out)
	return out, nil
}

func newTestApp(b Backend) (*App, *[]tea.Msg) {
	var mu sync.Mutex
	var got []tea.Msg
	app := &App{ctx: context.Background(), backend: b}
	app.emit = func(m tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, m)
	}
	return app, &got
}

func TestApp_HistoryIsAppendOnly(t *testing.T) {
	b := &recordingBackend{out: []string{"one", "two"}}
	app, got := newTestApp(b)

	app.reply("first")
	app.reply("second")

	require.Len(t, b.seen, 2)
	assert.Len(t, b.seen[0], 1)
	require.Len(t, b.seen[1], 3)
	assert.Equal(t, "one", b.seen[1][1].Content)
	assert.Equal(t, "second", b.seen[1][2].Content)

	h := app.History()
	require.Len(t, h, 4)
	assert.Equal(t, schema.Assistant, h[3].Role)
	assert.Equal(t, "two", h[3].Content)

	assert.Equal(t, ToolStartMsg{Name: "echo"}, (*got)[0])
	assert.Equal(t, ToolEndMsg{Name: "echo", Result: "ok"}, (*got)[1])
	assert.Equal(t, StreamChunkMsg("one"), (*got)[2])
	assert.Equal(t, ResponseMsg("one"), (*got)[3])
}

func TestApp_FailedTurnIsNotRecorded(t *testing.T) {
	app, got := newTestApp(&recordingBackend{err: errors.New("API 请求失败")})
	app.reply("hi")
	assert.Empty(t, app.History())
	assert.Equal(t, []tea.Msg{ErrorMsg("API 请求失败")}, *got)
}

func TestModelBackend_Reply(t *testing.T) {
	m := &cannedModel{chunks: []string{"你", "好"}}
	var chunks []string
	out, err := ModelBackend{Model: m, System: "sys"}.Reply(context.Background(),
		[]*schema.Message{schema.UserMessage("hi")}, func(s string) { chunks = append(chunks, s) }, nil)
	require.NoError(t, err)
	assert.Equal(t, "你好", out)
	assert.Equal(t, []string{"你", "好"}, chunks)
	require.Len(t, m.in, 2)
	assert.Equal(t, schema.System, m.in[0].Role)
}

type cannedModel struct {
	chunks []string
	in     []*schema.Message
}

func (c *cannedModel) Generate(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	c.in = in
	return schema.AssistantMessage(strings.Join(c.chunks, ""), nil), nil
}

func (c *cannedModel) Stream(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	c.in = in
	msgs := make([]*schema.Message, 0, len(c.chunks))
	for _, s := range c.chunks {
		msgs = append(msgs, schema.AssistantMessage(s, nil))
	}
	return schema.StreamReaderFromArray(msgs), nil
}
