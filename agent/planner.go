package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/tk103331/eino-browser-demo/logger"
)

const planPrompt = `
作为一个浏览器自动化专家，请分析以下任务并提供详细的执行步骤：

任务: %s

请提供 JSON 格式的执行计划，包含以下字段：
- steps: 执行步骤列表，每个步骤包含 action 和 params
- description: 任务描述

可用的操作包括:
%s

例如:
{
  "description": "访问百度并搜索人工智能",
  "steps": [
    {"action": "navigate_to", "params": {"url": "https://www.baidu.com"}},
    {"action": "fill_input", "params": {"selector": "#kw", "value": "人工智能"}},
    {"action": "click_element", "params": {"selector": "#su"}},
    {"action": "wait", "params": {"seconds": 3}},
    {"action": "take_screenshot", "params": {"name": "search_result"}}
  ]
}
`

// PlanPrompt renders the prompt asking the model for a JSON plan
func PlanPrompt(task string) string {
	lines := make([]string, 0, len(ActionDocs()))
	for _, d := range ActionDocs() {
		lines = append(lines, fmt.Sprintf("- %s: %s", d.Name, d.Description))
	}
	return fmt.Sprintf(planPrompt, task, strings.Join(lines, "\n"))
}

// Planner asks a chat model for a plan and runs it with a Dispatcher
type Planner struct {
	model      model.BaseChatModel
	dispatcher *Dispatcher
}

func NewPlanner(m model.BaseChatModel, dispatcher *Dispatcher) *Planner {
	return &Planner{model: m, dispatcher: dispatcher}
}

// Plan asks the model for a plan. Parse failures are *PlanError values.
func (p *Planner) Plan(ctx context.Context, task string) (*Plan, error) {
	reply, err := p.model.Generate(ctx, []*schema.Message{schema.UserMessage(PlanPrompt(task))})
	if err != nil {
		return nil, fmt.Errorf("任务规划失败: %w", err)
	}
	logger.Debug("AGENT", fmt.Sprintf("plan reply: %s", reply.Content))
	return ParsePlan(reply.Content)
}

// ExecuteTask plans task and runs every step
func (p *Planner) ExecuteTask(ctx context.Context, task string) (*Report, error) {
	plan, err := p.Plan(ctx, task)
	if err != nil {
		return nil, err
	}
	logger.Info("AGENT", fmt.Sprintf("executing %d steps for task: %s", len(plan.Steps), task))
	return p.dispatcher.Execute(ctx, plan, task), nil
}
