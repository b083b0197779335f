package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParsePlan(t *testing.T) {
	reply := "好的，计划如下：\n```json\n" + `{
  "description": "访问百度并搜索人工智能",
  "steps": [
    {"action": "navigate_to", "params": {"url": "https://www.baidu.com"}},
    {"action": "teleport", "params": {"to": "moon"}},
    {"action": "wait", "params": {"seconds": 3}},
    {"action": "get_page_text"}
  ]
}` + "\n```\n希望有帮助。"

	plan, err := ParsePlan(reply)
	require.NoError(t, err)
	assert.Equal(t, "访问百度并搜索人工智能", plan.Description)
	require.Len(t, plan.Steps, 4)

	assert.Equal(t, ActionNavigate, plan.Steps[0].Action.Kind)
	assert.Equal(t, "https://www.baidu.com", plan.Steps[0].Params.String("url"))

	assert.False(t, plan.Steps[1].Action.Supported())
	assert.Equal(t, "teleport", plan.Steps[1].Action.Name)

	assert.Equal(t, 3.0, plan.Steps[2].Params.Float("seconds", 1))
	assert.NotNil(t, plan.Steps[3].Params, "missing params decode to an empty map")
}

func TestParsePlan_Errors(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  error
	}{
		{"no braces", "抱歉，我无法完成这个任务。", ErrNoPlanJSON},
		{"broken json", `{"steps": [ {"action": "navigate_to", } ]}`, ErrInvalidPlan},
		{"missing steps", `{"description": "x"}`, ErrInvalidPlan},
		{"steps not array", `{"steps": "navigate"}`, ErrInvalidPlan},
		{"action not string", `{"steps": [{"action": 7}]}`, ErrInvalidPlan},
		{"step without action", `{"steps": [{"params": {}}]}`, ErrInvalidPlan},
		{"params not object", `{"steps": [{"action": "wait", "params": [1]}]}`, ErrInvalidPlan},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := ParsePlan(tc.reply)
			assert.Nil(t, plan)
			require.ErrorIs(t, err, tc.want)

			var pe *PlanError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.reply, pe.Reply)
		})
	}
}

func TestParsePlan_NullParamsAndEmptySteps(t *testing.T) {
	plan, err := ParsePlan(`{"steps": [{"action": "go_back", "params": null}]}`)
	require.NoError(t, err)
	assert.Equal(t, ActionGoBack, plan.Steps[0].Action.Kind)
	assert.Empty(t, plan.Steps[0].Params)

	plan, err = ParsePlan(`{"steps": []}`)
	require.NoError(t, err)
	assert.Empty(t, plan.Steps)
}

func TestParseAction_KnownNames(t *testing.T) {
	for _, d := range ActionDocs() {
		a := ParseAction(d.Name)
		assert.True(t, a.Supported(), d.Name)
		assert.Equal(t, d.Name, a.String())
	}
	assert.Len(t, ActionDocs(), len(actionNames))
}

func TestParseAction_NeverFails(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.String().Draw(t, "name")
		a := ParseAction(name)
		_, known := actionNames[a.Name]
		if a.Supported() != known {
			t.Fatalf("%q: supported=%t known=%t", name, a.Supported(), known)
		}
	})
}

func TestParams(t *testing.T) {
	p := Params{"s": "x", "n": 2.5, "b": true, "ns": "4"}
	assert.Equal(t, "x", p.String("s"))
	assert.Equal(t, "2.5", p.String("n"))
	assert.Equal(t, "", p.String("missing"))
	assert.Equal(t, 2.5, p.Float("n", 1))
	assert.Equal(t, 4.0, p.Float("ns", 1))
	assert.Equal(t, 1.0, p.Float("s", 1))
	assert.True(t, p.Bool("b"))
	assert.False(t, p.Bool("s"))
}
