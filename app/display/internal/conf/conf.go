package conf

type Bootstrap struct {
	Server  *Server  `json:"server"`
	Data    *Data    `json:"data"`
	Analyst *Analyst `json:"analyst"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type Data struct {
	Database *Database `json:"database"`
}

type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

// Analyst 分析引擎配置，为空时仪表盘只读
type Analyst struct {
	Schedule    string       `json:"schedule"`
	Llm         *LLM         `json:"llm"`
	Search      *Search      `json:"search"`
	Papers      *Papers      `json:"papers"`
	Analysis    *Analysis    `json:"analysis"`
	Companies   *Companies   `json:"companies"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
}

type LLM struct {
	BaseUrl     string  `json:"base_url"`
	ApiKey      string  `json:"api_key"`
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int32   `json:"max_tokens"`
}

type Search struct {
	Provider   string   `json:"provider"`
	MaxResults int32    `json:"max_results"`
	Tavily     *Tavily  `json:"tavily"`
	Searxng    *SearXNG `json:"searxng"`
}

type Tavily struct {
	ApiKey string `json:"api_key"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Papers struct {
	BaseUrl         string   `json:"base_url"`
	Queries         []string `json:"queries"`
	ResultsPerQuery int32    `json:"results_per_query"`
}

type Analysis struct {
	TimeoutSeconds    int32 `json:"timeout_seconds"`
	MaxRetries        int32 `json:"max_retries"`
	RetryDelaySeconds int32 `json:"retry_delay_seconds"`
}

type Companies struct {
	File        string `json:"file"`
	MarkdownDir string `json:"markdown_dir"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}
