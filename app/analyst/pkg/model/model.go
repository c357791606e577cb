package model

// CompanyRecord 公司原始数据，标签与数据文件中的字段名一致
// 除 Name 外的必填字段为指针，nil 表示数据中没有该键，空串仍算存在
type CompanyRecord struct {
	Name          string  `yaml:"name" json:"name"`
	Business      *string `yaml:"business" json:"business"`
	Revenue       *string `yaml:"revenue" json:"revenue"`             // 例如 "15.8亿元"
	NetProfit     *string `yaml:"net_profit" json:"net_profit"`       // 例如 "1.2亿元"
	RDInvestment  *string `yaml:"rd_investment" json:"rd_investment"` // 例如 "2.5亿元"
	PatentCount   *int    `yaml:"patent_count" json:"patent_count"`
	GrossMargin   *string `yaml:"gross_margin" json:"gross_margin"` // 例如 "45%"
	DebtRatio     *string `yaml:"debt_ratio" json:"debt_ratio"`
	MarketRisk    *string `yaml:"market_risk" json:"market_risk"`
	OperationRisk *string `yaml:"operation_risk" json:"operation_risk"`
	FinancialRisk *string `yaml:"financial_risk" json:"financial_risk"`
	TechRisk      *string `yaml:"tech_risk" json:"tech_risk"`

	// SourceURL 可选的年报页面，分析时作为补充上下文
	SourceURL string `yaml:"source_url,omitempty" json:"source_url,omitempty"`
}

// RequiredFields 分析所需的全部字段，顺序即校验与报告顺序
var RequiredFields = []string{
	"name", "business", "rd_investment", "patent_count",
	"revenue", "net_profit", "gross_margin", "debt_ratio",
	"market_risk", "operation_risk", "financial_risk", "tech_risk",
}

// Str 返回可选字段的值，缺失时为空串
func Str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Ptr 返回 v 的副本指针，用于构造记录
func Ptr[T any](v T) *T {
	return &v
}

// Patents 返回专利数量，缺失时为 0
func (r CompanyRecord) Patents() int {
	if r.PatentCount == nil {
		return 0
	}
	return *r.PatentCount
}

// Validate 校验必填字段是否存在，缺失时返回 *ValidationError
func (r CompanyRecord) Validate() error {
	present := map[string]bool{
		"name":           r.Name != "",
		"business":       r.Business != nil,
		"rd_investment":  r.RDInvestment != nil,
		"patent_count":   r.PatentCount != nil,
		"revenue":        r.Revenue != nil,
		"net_profit":     r.NetProfit != nil,
		"gross_margin":   r.GrossMargin != nil,
		"debt_ratio":     r.DebtRatio != nil,
		"market_risk":    r.MarketRisk != nil,
		"operation_risk": r.OperationRisk != nil,
		"financial_risk": r.FinancialRisk != nil,
		"tech_risk":      r.TechRisk != nil,
	}

	var missing []string
	for _, field := range RequiredFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Company: r.Name, Missing: missing}
	}
	return nil
}

// Risks 四项风险等级，顺序：市场、经营、财务、技术
func (r CompanyRecord) Risks() [4]string {
	return [4]string{Str(r.MarketRisk), Str(r.OperationRisk), Str(r.FinancialRisk), Str(r.TechRisk)}
}

// FinancialMetrics 由公司数据计算出的财务指标
type FinancialMetrics struct {
	NetProfitMargin float64 `json:"net_profit_margin"` // 百分比
	RDRatio         float64 `json:"rd_ratio"`          // 百分比
	PatentDensity   float64 `json:"patent_density"`    // 项/亿元
	RiskScore       float64 `json:"risk_score"`        // [0,3]
}

// DefaultMetrics 数据解析失败时使用的默认指标
func DefaultMetrics() FinancialMetrics {
	return FinancialMetrics{RiskScore: 2}
}

// ScoredMetrics 附带综合得分的指标，由评分引擎生成新值
type ScoredMetrics struct {
	FinancialMetrics
	PotentialScore  float64 `json:"potential_score"`
	InvestmentScore float64 `json:"investment_score"`
}

// RiskLevel 风险等级
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// RiskLevels 报告中风险分布的固定顺序
var RiskLevels = []RiskLevel{RiskHigh, RiskMedium, RiskLow}

// Perspective 叙述性分析的视角
type Perspective string

const (
	PerspectiveAcademic  Perspective = "academic"
	PerspectiveFinancial Perspective = "financial"
	PerspectiveRisk      Perspective = "risk"
)

// ReferencePaper 参考论文，可选字段缺失时为 nil
type ReferencePaper struct {
	Title               string   `json:"title"`
	Authors             string   `json:"authors"`
	CitationCount       *float64 `json:"citation_count,omitempty"`
	Year                *int     `json:"year,omitempty"`
	JournalImpactFactor *float64 `json:"journal_impact_factor,omitempty"`
	URL                 string   `json:"url,omitempty"`
}

// ScoredPaper 带评分的参考论文
type ScoredPaper struct {
	ReferencePaper
	Score float64 `json:"score"`
}
