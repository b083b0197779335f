// Package custom builds tools from templates declared in the configuration file.
package custom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/cloudwego/eino/schema"

	"github.com/tk103331/eino-browser-demo/config"
)

var dataTypes = map[string]schema.DataType{
	"string":  schema.String,
	"number":  schema.Number,
	"integer": schema.Integer,
	"boolean": schema.Boolean,
	"array":   schema.Array,
	"object":  schema.Object,
}

// toolInfo 根据配置的参数生成工具描述，未知类型按 string 处理
func toolInfo(name, desc, fallbackDesc string, params []config.ToolParam) *schema.ToolInfo {
	if desc == "" {
		desc = fallbackDesc
	}

	infos := make(map[string]*schema.ParameterInfo, len(params))
	for _, p := range params {
		dt, ok := dataTypes[p.Type]
		if !ok {
			dt = schema.String
		}
		infos[p.Name] = &schema.ParameterInfo{
			Type:     dt,
			Desc:     p.Description,
			Required: p.Required,
		}
	}

	return &schema.ToolInfo{
		Name:        name,
		Desc:        desc,
		ParamsOneOf: schema.NewParamsOneOfByParams(infos),
	}
}

// parseArgs 解析模型传入的 JSON 参数
func parseArgs(argumentsInJSON string) (map[string]any, error) {
	args := map[string]any{}
	if argumentsInJSON == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return nil, fmt.Errorf("解析参数失败: %w", err)
	}
	return args, nil
}

// render 渲染模板，缺失的参数视为错误
func render(name, tpl string, args map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, args); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// stringMap reads a map-valued config entry
func stringMap(cfg map[string]config.Value, key string) map[string]string {
	v, ok := cfg[key]
	if !ok || !v.IsMap() {
		return nil
	}
	out := make(map[string]string)
	for k, item := range v.Map() {
		out[k] = item.String()
	}
	return out
}
