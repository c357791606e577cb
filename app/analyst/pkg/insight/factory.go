package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/arxiv"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/config"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/search/factory"
)

// NewChatModel 初始化 OpenAI 兼容的 ChatModel
func NewChatModel(ctx context.Context, cfg config.LLMConfig) (model.BaseChatModel, error) {
	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		Timeout:     5 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return cm, nil
}

// NewLimiter 按 RPM 限流，QPS 作为突发容量
func NewLimiter(cfg config.ConcurrencyConfig) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(float64(cfg.RPM)/60.0), cfg.QPS)
}

// New 根据配置组装完整的 Agent
func New(ctx context.Context, cfg *config.Config) (*Agent, error) {
	cm, err := NewChatModel(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}

	searcher, err := factory.NewSearcher(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("搜索客户端初始化失败: %w", err)
	}

	return NewAgent(cm, AgentOptions{
		Limiter:    NewLimiter(cfg.Concurrency),
		Papers:     arxiv.NewClient(cfg.Papers.BaseURL, 30*time.Second),
		Searcher:   searcher,
		MaxResults: cfg.Search.MaxResults,
	}), nil
}
