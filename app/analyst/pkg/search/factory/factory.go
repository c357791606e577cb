package factory

import (
	"fmt"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/config"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/search"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/searxng"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/tavily"
)

// NewSearcher 根据配置创建搜索实例
// 未配置 provider 且没有 tavily key 时返回 nil，调用方不做联网搜索
func NewSearcher(cfg config.SearchConfig) (search.Searcher, error) {
	provider := cfg.Provider
	if provider == "" {
		if cfg.Tavily.APIKey == "" {
			return nil, nil
		}
		provider = "tavily"
	}

	switch provider {
	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey), nil
	case "searxng":
		if cfg.SearXNG.BaseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(cfg.SearXNG.BaseURL, cfg.SearXNG.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}
