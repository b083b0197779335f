package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tk103331/eino-browser-demo/logger"
)

// Backend performs the browser side of each action and returns a
// human-readable result line.
type Backend interface {
	Navigate(ctx context.Context, url string) (string, error)
	Click(ctx context.Context, selector string) (string, error)
	Fill(ctx context.Context, selector, value string) (string, error)
	Screenshot(ctx context.Context, name string) (string, error)
	Evaluate(ctx context.Context, script string) (string, error)
	PageText(ctx context.Context) (string, error)
	PageHTML(ctx context.Context) (string, error)
	PressKey(ctx context.Context, key, selector string) (string, error)
	Back(ctx context.Context) (string, error)
	Forward(ctx context.Context) (string, error)
}

// StepResult is the outcome of one step
type StepResult struct {
	Index  int
	Action Action
	Output string
	Err    error
}

func (r StepResult) OK() bool {
	return r.Err == nil
}

// Report is the outcome of a whole plan
type Report struct {
	Task    string
	Results []StepResult
}

// Failed counts the steps that did not succeed
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// String renders the execution log
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎯 任务: %s\n", r.Task)
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	for _, res := range r.Results {
		fmt.Fprintf(&sb, "📋 步骤 %d: %s\n", res.Index, res.Action.Name)
		switch {
		case !res.Action.Supported():
			fmt.Fprintf(&sb, "❌ 未知操作: %s\n", res.Action.Name)
		case res.Err != nil:
			fmt.Fprintf(&sb, "❌ 步骤 %d 执行失败: %v\n", res.Index, res.Err)
		default:
			sb.WriteString(res.Output + "\n")
		}
		sb.WriteString(strings.Repeat("-", 30) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// UnsupportedActionError is recorded for steps with an unknown action name
type UnsupportedActionError struct {
	Name string
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("未知操作: %s", e.Name)
}

// Dispatcher runs plan steps against a Backend in order
type Dispatcher struct {
	backend Backend
	sleep   func(context.Context, time.Duration) error
}

func NewDispatcher(backend Backend) *Dispatcher {
	return &Dispatcher{backend: backend, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Execute runs every step. A failing or unsupported step is recorded and
// the next step still runs; only cancellation of ctx stops early.
func (d *Dispatcher) Execute(ctx context.Context, plan *Plan, task string) *Report {
	if plan.Description != "" {
		task = plan.Description
	}
	report := &Report{Task: task}

	for i, step := range plan.Steps {
		if ctx.Err() != nil {
			break
		}
		res := StepResult{Index: i + 1, Action: step.Action}
		res.Output, res.Err = d.run(ctx, step)
		if res.Err != nil {
			logger.Warn("AGENT", fmt.Sprintf("step %d (%s) failed: %v", res.Index, step.Action.Name, res.Err))
		}
		report.Results = append(report.Results, res)
	}
	return report
}

func (d *Dispatcher) run(ctx context.Context, step Step) (string, error) {
	p := step.Params
	switch step.Action.Kind {
	case ActionNavigate:
		return d.backend.Navigate(ctx, p.String("url"))
	case ActionClick:
		return d.backend.Click(ctx, p.String("selector"))
	case ActionFill:
		value := p.String("value")
		if value == "" {
			value = p.String("text")
		}
		return d.backend.Fill(ctx, p.String("selector"), value)
	case ActionScreenshot:
		name := p.String("name")
		if name == "" {
			name = "screenshot"
		}
		return d.backend.Screenshot(ctx, name)
	case ActionEvaluate:
		return d.backend.Evaluate(ctx, p.String("script"))
	case ActionPageText:
		return d.backend.PageText(ctx)
	case ActionPageHTML:
		return d.backend.PageHTML(ctx)
	case ActionPressKey:
		return d.backend.PressKey(ctx, p.String("key"), p.String("selector"))
	case ActionGoBack:
		return d.backend.Back(ctx)
	case ActionGoForward:
		return d.backend.Forward(ctx)
	case ActionWait:
		seconds := p.Float("seconds", 1)
		if err := d.sleep(ctx, time.Duration(seconds*float64(time.Second))); err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ 等待 %g 秒", seconds), nil
	default:
		return "", &UnsupportedActionError{Name: step.Action.Name}
	}
}
