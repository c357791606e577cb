package report

import (
	"strings"
	"testing"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/ranking"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInput() CompanyInput {
	patents := 150
	rec := model.CompanyRecord{
		Name:          "拓维信息",
		Business:      model.Ptr("软件开发和信息技术服务"),
		Revenue:       model.Ptr("15.8亿元"),
		NetProfit:     model.Ptr("1.2亿元"),
		RDInvestment:  model.Ptr("2.5亿元"),
		PatentCount:   &patents,
		GrossMargin:   model.Ptr("45%"),
		DebtRatio:     model.Ptr("35%"),
		MarketRisk:    model.Ptr("medium"),
		OperationRisk: model.Ptr("low"),
		FinancialRisk: model.Ptr("low"),
		TechRisk:      model.Ptr("medium"),
	}
	return CompanyInput{
		Record: rec,
		Metrics: scoring.Score(model.FinancialMetrics{
			NetProfitMargin: 7.59, RDRatio: 15.82, PatentDensity: 9.49, RiskScore: 1.5,
		}),
		Academic:  "academic narrative",
		Financial: "financial narrative",
		Risk:      "risk narrative",
		Papers: []model.ScoredPaper{
			{ReferencePaper: model.ReferencePaper{Title: "Paper A", Authors: "Alice"}},
		},
	}
}

func assertHeadersInOrder(t *testing.T, text string, headers []string) {
	t.Helper()
	last := -1
	for _, h := range headers {
		idx := strings.Index(text, "\n"+h+"\n")
		require.GreaterOrEqual(t, idx, 0, "header %q missing", h)
		assert.Greater(t, idx, last, "header %q out of order", h)
		last = idx
	}
}

func TestComposeCompany(t *testing.T) {
	text := ComposeCompany(sampleInput())

	assert.True(t, strings.HasPrefix(text, CompanyTitle+"\n"))
	assertHeadersInOrder(t, text, CompanyHeaders)

	sections := SplitSections(text, CompanyHeaders)
	require.Len(t, sections, len(CompanyHeaders))

	assert.Equal(t, "financial narrative", sections[3].Body)
	assert.Contains(t, sections[4].Body, "R&D to revenue ratio: 15.82%")
	assert.True(t, strings.HasSuffix(sections[4].Body, "academic narrative"))
	assert.Equal(t, "risk narrative", sections[5].Body)
	assert.Contains(t, sections[2].Body, "Patents: 150")
	assert.Equal(t, "1. Paper A - Alice", sections[8].Body)
}

func TestComposeCompany_EmptyNarrativesKeepReport(t *testing.T) {
	in := sampleInput()
	in.Academic, in.Financial, in.Risk = "", "", ""
	in.Papers = nil

	text := ComposeCompany(in)

	assertHeadersInOrder(t, text, CompanyHeaders)
	sections := SplitSections(text, CompanyHeaders)
	require.Len(t, sections, len(CompanyHeaders))
	assert.Empty(t, sections[3].Body)
	assert.Empty(t, sections[5].Body)
	assert.NotEmpty(t, sections[4].Body)
	assert.Equal(t, NoReferences, sections[8].Body)
}

func TestComposeComparison(t *testing.T) {
	c, err := ranking.Compare([]ranking.Entry{
		{Name: "A", Metrics: scoring.Score(model.FinancialMetrics{NetProfitMargin: 10, RDRatio: 5, PatentDensity: 2, RiskScore: 1})},
		{Name: "B", Metrics: scoring.Score(model.FinancialMetrics{NetProfitMargin: 20, RDRatio: 15, PatentDensity: 8, RiskScore: 2.5})},
	})
	require.NoError(t, err)

	text := ComposeComparison(c, nil)

	assert.True(t, strings.HasPrefix(text, ComparisonTitle+"\n"))
	assertHeadersInOrder(t, text, ComparisonHeaders)

	sections := SplitSections(text, ComparisonHeaders)
	require.Len(t, sections, len(ComparisonHeaders))
	assert.Contains(t, sections[0].Body, "2 companies: A, B")
	assert.True(t, strings.HasPrefix(sections[1].Body, "1. B:"))
	assert.Contains(t, sections[2].Body, "net_profit_margin\tA\t10.00\t-5.00")
	assert.Contains(t, sections[2].Body, "net_profit_margin\tB\t20.00\t+5.00")
	assert.Contains(t, sections[4].Body, "- high risk: 1 companies")
	assert.Contains(t, sections[4].Body, "- medium risk: 0 companies")
	assert.Contains(t, sections[4].Body, "- low risk: 1 companies")
	assert.Equal(t, NoReferences, sections[7].Body)
}

func TestComposeComparison_DuplicateNamesKeepOwnRisk(t *testing.T) {
	c, err := ranking.Compare([]ranking.Entry{
		{Name: "X", Metrics: scoring.Score(model.FinancialMetrics{NetProfitMargin: 30, RDRatio: 1, PatentDensity: 1, RiskScore: 1})},
		{Name: "X", Metrics: scoring.Score(model.FinancialMetrics{NetProfitMargin: 25, RDRatio: 1, PatentDensity: 1, RiskScore: 3})},
	})
	require.NoError(t, err)

	blocks := strings.Split(comparisonAdvice(c), "\n\n")
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0], "Investment score: 10.00")
	assert.Contains(t, blocks[0], "Risk level: low")
	assert.Contains(t, blocks[0], "Strong buy")
	assert.Contains(t, blocks[1], "Investment score: 7.90")
	assert.Contains(t, blocks[1], "Risk level: high")
	assert.Contains(t, blocks[1], "Hold/avoid")
}

func TestFormatReferences(t *testing.T) {
	assert.Equal(t, NoReferences, FormatReferences(nil))

	got := FormatReferences([]model.ScoredPaper{
		{ReferencePaper: model.ReferencePaper{Title: "T1", Authors: "A1"}},
		{ReferencePaper: model.ReferencePaper{}},
	})
	assert.Equal(t, "1. T1 - A1\n2. Unknown title - Unknown authors", got)
}

func TestSplitSections_SkipsMissingHeaders(t *testing.T) {
	text := "title\n1. Overview\nfoo\n\n3. Financial Comparison\nbar\nbaz\n"

	got := SplitSections(text, ComparisonHeaders)

	assert.Equal(t, []Section{
		{Header: "1. Overview", Body: "foo"},
		{Header: "3. Financial Comparison", Body: "bar\nbaz"},
	}, got)
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Analysis of company 拓维信息 timed out, please retry", TimeoutMessage("拓维信息"))
	assert.Equal(t, "Analysis failed: no valid company analysis results", BatchFailureMessage)
}
