package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Papers      PapersConfig      `yaml:"papers"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Companies   CompaniesConfig   `yaml:"companies"`
	Log         LogConfig         `yaml:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	DB          DBConfig          `yaml:"db"`
	Output      string            `yaml:"output"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// SearchConfig 公司信息搜索配置，Provider 为空时不做联网搜索
type SearchConfig struct {
	Provider   string        `yaml:"provider"`
	MaxResults int           `yaml:"max_results"`
	Tavily     TavilyConfig  `yaml:"tavily"`
	SearXNG    SearXNGConfig `yaml:"searxng"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// PapersConfig 学术论文检索配置
type PapersConfig struct {
	BaseURL         string   `yaml:"base_url"`
	Queries         []string `yaml:"queries"`
	ResultsPerQuery int      `yaml:"results_per_query"`
}

// AnalysisConfig 单公司分析的超时与重试
type AnalysisConfig struct {
	TimeoutSeconds    int `yaml:"timeout_seconds"`
	MaxRetries        int `yaml:"max_retries"`
	RetryDelaySeconds int `yaml:"retry_delay_seconds"`
}

// CompaniesConfig 公司数据来源
type CompaniesConfig struct {
	File        string `yaml:"file"`
	MarkdownDir string `yaml:"markdown_dir"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// DefaultPaperQueries 检索研究方法论文时使用的查询
var DefaultPaperQueries = []string{
	"annual report analysis methodology",
	"financial statement analysis techniques",
	"company valuation methods",
	"risk assessment in financial analysis",
	"industry comparison methodology",
}

// LoadConfig 从指定路径加载配置
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

// applyEnv 敏感信息允许通过环境变量覆盖（.env 由 cmd 负责加载）
func (c *Config) applyEnv() {
	if v := os.Getenv("ANALYST_LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("ANALYST_TAVILY_API_KEY"); v != "" {
		c.Search.Tavily.APIKey = v
	}
	if v := os.Getenv("ANALYST_DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
}

// ApplyDefaults 填充未配置的默认值
func (c *Config) ApplyDefaults() {
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 2000
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = 5
	}
	if len(c.Papers.Queries) == 0 {
		c.Papers.Queries = append([]string(nil), DefaultPaperQueries...)
	}
	if c.Papers.ResultsPerQuery == 0 {
		c.Papers.ResultsPerQuery = 3
	}
	if c.Analysis.TimeoutSeconds == 0 {
		c.Analysis.TimeoutSeconds = 600
	}
	if c.Analysis.MaxRetries == 0 {
		c.Analysis.MaxRetries = 3
	}
	if c.Analysis.RetryDelaySeconds == 0 {
		c.Analysis.RetryDelaySeconds = 2
	}
	if c.Concurrency.RPM == 0 {
		c.Concurrency.RPM = 60
	}
	if c.Concurrency.QPS == 0 {
		c.Concurrency.QPS = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Timeout 单公司分析的超时时间
func (a AnalysisConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// RetryDelay 超时重试的等待时间
func (a AnalysisConfig) RetryDelay() time.Duration {
	return time.Duration(a.RetryDelaySeconds) * time.Second
}
