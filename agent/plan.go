package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	// ErrNoPlanJSON the reply contains no brace-delimited JSON
	ErrNoPlanJSON = errors.New("未找到有效的 JSON 响应")
	// ErrInvalidPlan the JSON does not parse or does not match the plan schema
	ErrInvalidPlan = errors.New("无效的执行计划")
)

// PlanError carries the model reply that failed to parse
type PlanError struct {
	Reply string
	Err   error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("任务规划解析失败: %v", e.Err)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}

// ActionKind is the closed set of steps a plan may contain
type ActionKind int

const (
	ActionUnsupported ActionKind = iota
	ActionNavigate
	ActionClick
	ActionFill
	ActionScreenshot
	ActionEvaluate
	ActionPageText
	ActionPageHTML
	ActionPressKey
	ActionGoBack
	ActionGoForward
	ActionWait
)

var actionNames = map[string]ActionKind{
	"navigate_to":        ActionNavigate,
	"click_element":      ActionClick,
	"fill_input":         ActionFill,
	"take_screenshot":    ActionScreenshot,
	"execute_javascript": ActionEvaluate,
	"get_page_text":      ActionPageText,
	"get_page_html":      ActionPageHTML,
	"press_key":          ActionPressKey,
	"go_back":            ActionGoBack,
	"go_forward":         ActionGoForward,
	"wait":               ActionWait,
}

// ActionDoc describes an action in the planning prompt
type ActionDoc struct {
	Name        string
	Description string
}

// ActionDocs lists the supported actions in prompt order
func ActionDocs() []ActionDoc {
	return []ActionDoc{
		{"navigate_to", "导航到 URL"},
		{"click_element", "点击元素"},
		{"fill_input", "填写输入框"},
		{"take_screenshot", "截图"},
		{"execute_javascript", "执行 JS"},
		{"get_page_text", "获取页面文本"},
		{"get_page_html", "获取页面 HTML"},
		{"press_key", "按下键盘按键"},
		{"go_back", "后退"},
		{"go_forward", "前进"},
		{"wait", "等待指定时间（秒）"},
	}
}

// Action is a decoded step action. Unknown names decode to ActionUnsupported
// and keep the name the model used.
type Action struct {
	Kind ActionKind
	Name string
}

// ParseAction never fails; unknown names become ActionUnsupported
func ParseAction(name string) Action {
	name = strings.TrimSpace(name)
	if kind, ok := actionNames[name]; ok {
		return Action{Kind: kind, Name: name}
	}
	return Action{Kind: ActionUnsupported, Name: name}
}

func (a Action) Supported() bool {
	return a.Kind != ActionUnsupported
}

func (a Action) String() string {
	return a.Name
}

// Params are the arguments of one step
type Params map[string]any

// String returns the value at key as a string; numbers and booleans are formatted
func (p Params) String(key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

// Float returns a numeric parameter, def when absent or not a number
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f
		}
	}
	return def
}

// Bool returns a boolean parameter, false when absent
func (p Params) Bool(key string) bool {
	b, _ := p[key].(bool)
	return b
}

// Step is one action of a plan
type Step struct {
	Action Action
	Params Params
}

// Plan is the decoded model output
type Plan struct {
	Description string
	Steps       []Step
}

var (
	planJSON   = regexp.MustCompile(`(?s)\{.*\}`)
	planSchema = newPlanSchema()
)

func newPlanSchema() *openapi3.Schema {
	params := openapi3.NewObjectSchema()
	params.Nullable = true

	step := openapi3.NewObjectSchema().
		WithProperty("action", openapi3.NewStringSchema()).
		WithProperty("params", params)
	step.Required = []string{"action"}

	plan := openapi3.NewObjectSchema().
		WithProperty("description", openapi3.NewStringSchema()).
		WithProperty("steps", openapi3.NewArraySchema().WithItems(step))
	plan.Required = []string{"steps"}
	return plan
}

// ParsePlan extracts the first-'{' to last-'}' span of reply, validates it
// against the plan schema and decodes it. A reply without braces yields
// ErrNoPlanJSON; malformed JSON or a schema mismatch yields ErrInvalidPlan.
// Both are wrapped in a *PlanError holding the reply.
func ParsePlan(reply string) (*Plan, error) {
	raw := planJSON.FindString(reply)
	if raw == "" {
		return nil, &PlanError{Reply: reply, Err: ErrNoPlanJSON}
	}

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, &PlanError{Reply: reply, Err: fmt.Errorf("%w: %v", ErrInvalidPlan, err)}
	}
	if err := planSchema.VisitJSON(doc); err != nil {
		return nil, &PlanError{Reply: reply, Err: fmt.Errorf("%w: %v", ErrInvalidPlan, err)}
	}

	var decoded struct {
		Description string `json:"description"`
		Steps       []struct {
			Action string         `json:"action"`
			Params map[string]any `json:"params"`
		} `json:"steps"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, &PlanError{Reply: reply, Err: fmt.Errorf("%w: %v", ErrInvalidPlan, err)}
	}

	plan := &Plan{Description: decoded.Description, Steps: make([]Step, 0, len(decoded.Steps))}
	for _, s := range decoded.Steps {
		params := Params(s.Params)
		if params == nil {
			params = Params{}
		}
		plan.Steps = append(plan.Steps, Step{Action: ParseAction(s.Action), Params: params})
	}
	return plan, nil
}
