package tools

import (
	"context"
	"time"

	"github.com/cloudwego/eino-ext/components/tool/bingsearch"
	"github.com/cloudwego/eino-ext/components/tool/duckduckgo"
	"github.com/cloudwego/eino-ext/components/tool/duckduckgo/ddgsearch"
	"github.com/cloudwego/eino-ext/components/tool/googlesearch"
	"github.com/cloudwego/eino-ext/components/tool/wikipedia"
	"github.com/cloudwego/eino/components/tool"

	"github.com/tk103331/eino-browser-demo/config"
)

// options wraps a tool's config map with typed lookups
type options map[string]config.Value

func (o options) str(key string, dst *string) {
	if v, ok := o[key]; ok && v.String() != "" {
		*dst = v.String()
	}
}

func (o options) positive(key string, dst *int) {
	if v, ok := o[key]; ok && v.Int() > 0 {
		*dst = v.Int()
	}
}

func (o options) seconds(key string, dst *time.Duration) {
	if v, ok := o[key]; ok && v.Int() > 0 {
		*dst = time.Duration(v.Int()) * time.Second
	}
}

func newBingSearchTool(ctx context.Context, name string, cfg config.Tool) (tool.BaseTool, error) {
	o := options(cfg.Config)
	c := &bingsearch.Config{
		ToolName:   name,
		ToolDesc:   cfg.Description,
		MaxResults: 5,
	}
	o.str("api_key", &c.APIKey)
	o.positive("max_results", &c.MaxResults)
	return bingsearch.NewTool(ctx, c)
}

var ddgRegions = map[string]ddgsearch.Region{
	"cn": ddgsearch.RegionCN,
	"us": ddgsearch.RegionUS,
	"uk": ddgsearch.RegionUK,
}

var ddgSafeSearch = map[string]ddgsearch.SafeSearch{
	"strict":   ddgsearch.SafeSearchStrict,
	"moderate": ddgsearch.SafeSearchModerate,
}

func newDuckDuckGoTool(ctx context.Context, name string, cfg config.Tool) (tool.BaseTool, error) {
	o := options(cfg.Config)
	c := &duckduckgo.Config{
		ToolName:   name,
		ToolDesc:   cfg.Description,
		Region:     ddgsearch.RegionWT,
		MaxResults: 10,
		SafeSearch: ddgsearch.SafeSearchOff,
		TimeRange:  ddgsearch.TimeRangeAll,
		DDGConfig: &ddgsearch.Config{
			Timeout:    10 * time.Second,
			Cache:      true,
			MaxRetries: 5,
		},
	}
	o.positive("max_results", &c.MaxResults)
	o.seconds("timeout", &c.DDGConfig.Timeout)
	if r, ok := ddgRegions[o["region"].String()]; ok {
		c.Region = r
	}
	if s, ok := ddgSafeSearch[o["safe_search"].String()]; ok {
		c.SafeSearch = s
	}
	return duckduckgo.NewTool(ctx, c)
}

func newGoogleSearchTool(ctx context.Context, name string, cfg config.Tool) (tool.BaseTool, error) {
	o := options(cfg.Config)
	c := &googlesearch.Config{
		ToolName: name,
		ToolDesc: cfg.Description,
		Num:      5,
		Lang:     "zh-CN",
	}
	o.str("api_key", &c.APIKey)
	o.str("search_engine_id", &c.SearchEngineID)
	o.str("base_url", &c.BaseURL)
	o.str("lang", &c.Lang)
	o.positive("num", &c.Num)
	return googlesearch.NewTool(ctx, c)
}

func newWikipediaTool(ctx context.Context, _ string, cfg config.Tool) (tool.BaseTool, error) {
	o := options(cfg.Config)
	c := &wikipedia.Config{
		Language:    "zh",
		TopK:        5,
		DocMaxChars: 500,
		Timeout:     15 * time.Second,
		MaxRedirect: 3,
	}
	o.str("language", &c.Language)
	o.str("base_url", &c.BaseURL)
	o.str("user_agent", &c.UserAgent)
	o.positive("top_k", &c.TopK)
	o.positive("doc_max_chars", &c.DocMaxChars)
	o.positive("max_redirect", &c.MaxRedirect)
	o.seconds("timeout", &c.Timeout)
	return wikipedia.NewTool(ctx, c)
}
