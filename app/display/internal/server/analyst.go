package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/config"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/engine"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/insight"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/loader"
	anLogger "github.com/iWorld-y/report_analyst/app/analyst/pkg/logger"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/storage"
	"github.com/iWorld-y/report_analyst/app/display/internal/conf"
	"github.com/iWorld-y/report_analyst/app/display/internal/usecase"
)

// NewAnalystEngine 初始化分析引擎，未配置 analyst 时返回 nil
func NewAnalystEngine(c *conf.Analyst, d *conf.Data, logger log.Logger) (usecase.Runner, func(), error) {
	if c == nil {
		return nil, func() {}, nil
	}
	helper := log.NewHelper(logger)
	cfg := ToConfig(c)

	// 初始化日志
	if err := anLogger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		helper.Errorf("Failed to init analyst logger: %v", err)
		_ = anLogger.InitLogger("info", "") // 降级处理
	}

	ctx := context.Background()

	// 初始化存储层
	store, err := storage.Open(ctx, d.Database.Source)
	if err != nil {
		helper.Errorf("Failed to init storage for engine: %v", err)
		return nil, nil, err
	}

	agent, err := insight.New(ctx, cfg)
	if err != nil {
		store.Close()
		helper.Errorf("Failed to init insight provider: %v", err)
		return nil, nil, err
	}

	eng := engine.FromConfig(cfg, agent, store)

	cleanup := func() {
		helper.Info("Cleaning up analyst engine")
		store.Close()
	}
	return eng, cleanup, nil
}

// ToConfig 将 conf.Analyst 转换为 config.Config 并填充默认值
func ToConfig(c *conf.Analyst) *config.Config {
	cfg := &config.Config{}
	if c.Llm != nil {
		cfg.LLM = config.LLMConfig{
			BaseURL:     c.Llm.BaseUrl,
			APIKey:      c.Llm.ApiKey,
			Model:       c.Llm.Model,
			Temperature: c.Llm.Temperature,
			MaxTokens:   int(c.Llm.MaxTokens),
		}
	}
	if c.Search != nil {
		cfg.Search.Provider = c.Search.Provider
		cfg.Search.MaxResults = int(c.Search.MaxResults)
		if c.Search.Tavily != nil {
			cfg.Search.Tavily.APIKey = c.Search.Tavily.ApiKey
		}
		if c.Search.Searxng != nil {
			cfg.Search.SearXNG = config.SearXNGConfig{
				BaseURL: c.Search.Searxng.BaseUrl,
				Timeout: int(c.Search.Searxng.Timeout),
			}
		}
	}
	if c.Papers != nil {
		cfg.Papers = config.PapersConfig{
			BaseURL:         c.Papers.BaseUrl,
			Queries:         c.Papers.Queries,
			ResultsPerQuery: int(c.Papers.ResultsPerQuery),
		}
	}
	if c.Analysis != nil {
		cfg.Analysis = config.AnalysisConfig{
			TimeoutSeconds:    int(c.Analysis.TimeoutSeconds),
			MaxRetries:        int(c.Analysis.MaxRetries),
			RetryDelaySeconds: int(c.Analysis.RetryDelaySeconds),
		}
	}
	if c.Companies != nil {
		cfg.Companies = config.CompaniesConfig{
			File:        c.Companies.File,
			MarkdownDir: c.Companies.MarkdownDir,
		}
	}
	if c.Log != nil {
		cfg.Log = config.LogConfig{Level: c.Log.Level, File: c.Log.File}
	}
	if c.Concurrency != nil {
		cfg.Concurrency = config.ConcurrencyConfig{
			QPS: int(c.Concurrency.Qps),
			RPM: int(c.Concurrency.Rpm),
		}
	}
	cfg.ApplyDefaults()
	return cfg
}

type companySource struct {
	cfg config.CompaniesConfig
}

// NewCompanySource 每次触发时重新读取公司数据，便于更新年报后无需重启
func NewCompanySource(c *conf.Analyst) usecase.CompanySource {
	if c == nil || c.Companies == nil {
		return nil
	}
	return &companySource{cfg: config.CompaniesConfig{
		File:        c.Companies.File,
		MarkdownDir: c.Companies.MarkdownDir,
	}}
}

func (s *companySource) Companies() ([]model.CompanyRecord, error) {
	return loader.Load(s.cfg)
}
