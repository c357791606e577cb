package domain

import "time"

// RunSummary 分析批次摘要
type RunSummary struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Status             string    `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	CompanyCount       int       `json:"company_count"`
	AvgInvestmentScore float64   `json:"avg_investment_score"`
}

// Metrics 落库的财务与评分指标
type Metrics struct {
	NetProfitMargin float64 `json:"net_profit_margin"`
	RDRatio         float64 `json:"rd_ratio"`
	PatentDensity   float64 `json:"patent_density"`
	RiskScore       float64 `json:"risk_score"`
	PotentialScore  float64 `json:"potential_score"`
	InvestmentScore float64 `json:"investment_score"`
}

// Section 按固定标题切分后的报告章节
type Section struct {
	Header string `json:"header"`
	Body   string `json:"body"`
	HTML   string `json:"html"`
}

// CompanyReport 单公司报告
type CompanyReport struct {
	ID          int        `json:"id"`
	CompanyName string     `json:"company_name"`
	Status      string     `json:"status"`
	Report      string     `json:"report"`
	Metrics     Metrics    `json:"metrics"`
	Sections    []*Section `json:"sections"`
}

// RunDetail 批次详情，包括各公司报告与对比报告
type RunDetail struct {
	RunSummary
	FinishedAt         *time.Time       `json:"finished_at,omitempty"`
	Companies          []*CompanyReport `json:"companies"`
	Comparison         string           `json:"comparison"`
	ComparisonSections []*Section       `json:"comparison_sections"`
}

// Progress 后台批次进度
type Progress struct {
	Running   bool      `json:"running"`
	Status    string    `json:"status"`
	Percent   int       `json:"percent"`
	RunID     string    `json:"run_id,omitempty"`
	Succeeded int       `json:"succeeded"`
	Total     int       `json:"total"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
}
