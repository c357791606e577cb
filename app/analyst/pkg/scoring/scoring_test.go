package scoring

import (
	"testing"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/metrics"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPotentialAndInvestment(t *testing.T) {
	m := model.FinancialMetrics{NetProfitMargin: 10, RDRatio: 5, PatentDensity: 2, RiskScore: 2}

	assert.InDelta(t, 10*0.4+5*0.3+2*0.3, Potential(m), 1e-9)
	assert.InDelta(t, 10*0.3+5*0.2+2*0.2+1*0.3, Investment(m), 1e-9)
}

func TestInvestment_Clamped(t *testing.T) {
	patents := 1
	rec := model.CompanyRecord{
		Name:          "极端公司",
		Revenue:       model.Ptr("0.0001亿元"),
		NetProfit:     model.Ptr("1000亿元"),
		RDInvestment:  model.Ptr("0亿元"),
		PatentCount:   &patents,
		MarketRisk:    model.Ptr("low"),
		OperationRisk: model.Ptr("low"),
		FinancialRisk: model.Ptr("low"),
		TechRisk:      model.Ptr("low"),
	}
	m, err := metrics.Compute(rec)
	require.NoError(t, err)
	require.Greater(t, m.NetProfitMargin*0.3, MaxInvestmentScore)

	assert.Equal(t, MaxInvestmentScore, Investment(m))
	assert.Greater(t, Potential(m), MaxInvestmentScore)
}

func TestInvestment_NoLowerClamp(t *testing.T) {
	m := model.FinancialMetrics{NetProfitMargin: -100, RiskScore: 3}
	assert.InDelta(t, -30, Investment(m), 1e-9)
}

func TestScore_ReturnsNewValue(t *testing.T) {
	m := model.FinancialMetrics{NetProfitMargin: 20, RDRatio: 10, PatentDensity: 5, RiskScore: 1}
	before := m

	s := Score(m)

	assert.Equal(t, before, m)
	assert.Equal(t, m, s.FinancialMetrics)
	assert.InDelta(t, Potential(m), s.PotentialScore, 1e-9)
	assert.InDelta(t, Investment(m), s.InvestmentScore, 1e-9)
}

func TestScoreToLevel(t *testing.T) {
	tests := []struct {
		risk float64
		want model.RiskLevel
	}{
		{3, model.RiskHigh},
		{2.5, model.RiskHigh},
		{2.49, model.RiskMedium},
		{1.5, model.RiskMedium},
		{1.49, model.RiskLow},
		{0, model.RiskLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreToLevel(tt.risk), "risk=%v", tt.risk)
	}
}

func TestAdvise(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		risk  float64
		want  Tier
	}{
		{"boundary strong buy", 8.0, 1.5, TierStrongBuy},
		{"just below strong buy", 7.99, 1.5, TierBuy},
		{"strong score but risky", 9, 1.6, TierBuy},
		{"buy boundary", 6, 2, TierBuy},
		{"watch", 5.99, 2, TierWatch},
		{"watch boundary", 4, 2.5, TierWatch},
		{"hold low score", 3.99, 1, TierHold},
		{"hold high risk", 10, 2.6, TierHold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advise(tt.score, tt.risk)
			assert.Equal(t, tt.want, got.Tier)
			assert.NotEmpty(t, got.Text)
		})
	}
}

func TestGrades(t *testing.T) {
	assert.Equal(t, "very high", RDIntensity(10))
	assert.Equal(t, "high", RDIntensity(5))
	assert.Equal(t, "medium", RDIntensity(3))
	assert.Equal(t, "low", RDIntensity(2.99))

	assert.Equal(t, "very high", InnovationEfficiency(12))
	assert.Equal(t, "medium", InnovationEfficiency(2))
	assert.Equal(t, "low", InnovationEfficiency(1.9))
}

func TestTechRiskAdvice(t *testing.T) {
	assert.Contains(t, TechRiskAdvice("high"), "Strengthen")
	assert.Contains(t, TechRiskAdvice("中等"), "Maintain")
	assert.Contains(t, TechRiskAdvice("low"), "Keep")
	assert.Contains(t, TechRiskAdvice("unknown"), "Keep")
}
