package scoring

import (
	"math"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/metrics"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
)

// MaxInvestmentScore 投资价值得分上限
const MaxInvestmentScore = 10.0

// Potential 发展潜力得分：盈利 40%，研发 30%，创新 30%
func Potential(m model.FinancialMetrics) float64 {
	return m.NetProfitMargin*0.4 + m.RDRatio*0.3 + m.PatentDensity*0.3
}

// Investment 投资价值得分，风险越低越好，上限为 MaxInvestmentScore
func Investment(m model.FinancialMetrics) float64 {
	score := m.NetProfitMargin*0.3 +
		m.RDRatio*0.2 +
		m.PatentDensity*0.2 +
		(3-m.RiskScore)*0.3
	return math.Min(score, MaxInvestmentScore)
}

// Score 返回带综合得分的新指标，不修改入参
func Score(m model.FinancialMetrics) model.ScoredMetrics {
	return model.ScoredMetrics{
		FinancialMetrics: m,
		PotentialScore:   Potential(m),
		InvestmentScore:  Investment(m),
	}
}

// ScoreToLevel 综合风险得分分档
func ScoreToLevel(risk float64) model.RiskLevel {
	switch {
	case risk >= 2.5:
		return model.RiskHigh
	case risk >= 1.5:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// Tier 投资建议档位
type Tier string

const (
	TierStrongBuy Tier = "strong buy"
	TierBuy       Tier = "buy"
	TierWatch     Tier = "watch"
	TierHold      Tier = "hold"
)

// Advice 具体投资建议
type Advice struct {
	Tier Tier   `json:"tier"`
	Text string `json:"text"`
}

func (a Advice) String() string {
	return a.Text
}

// Advise 根据投资价值得分与综合风险得分给出建议，阈值均含边界
func Advise(score, risk float64) Advice {
	switch {
	case score >= 8 && risk <= 1.5:
		return Advice{TierStrongBuy, "Strong buy: high investment value with low risk"}
	case score >= 6 && risk <= 2:
		return Advice{TierBuy, "Buy: good investment value with controllable risk"}
	case score >= 4 && risk <= 2.5:
		return Advice{TierWatch, "Watch: worth considering, monitor risk control closely"}
	default:
		return Advice{TierHold, "Hold/avoid: low investment value or high risk"}
	}
}

// RDIntensity 研发投入强度
func RDIntensity(rdRatio float64) string {
	return grade(rdRatio, 10, 5, 3)
}

// InnovationEfficiency 创新效率（专利密度）
func InnovationEfficiency(patentDensity float64) string {
	return grade(patentDensity, 10, 5, 2)
}

func grade(v, veryHigh, high, medium float64) string {
	switch {
	case v >= veryHigh:
		return "very high"
	case v >= high:
		return "high"
	case v >= medium:
		return "medium"
	default:
		return "low"
	}
}

// TechRiskAdvice 技术风险应对建议
func TechRiskAdvice(level string) string {
	switch metrics.RiskCode(level) {
	case 3:
		return "Strengthen R&D investment, build technology reserves and improve independent innovation"
	case 2:
		return "Maintain R&D investment and follow industry technology trends"
	default:
		return "Keep the current technology advantage and moderately increase innovation investment"
	}
}
