package report

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/logger"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/metrics"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/ranking"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/scoring"
)

var companyTmpl = template.Must(template.New("company").Parse(`{{.Title}}

1. Executive Summary
{{.Summary}}

2. Methodology
{{.Methodology}}

3. Company Profile
{{.Profile}}

4. Financial Analysis
{{.Financial}}

5. R&D/Innovation Analysis
{{.RD}}

6. Risk Assessment
{{.Risk}}

7. Industry Comparison
{{.Industry}}

8. Investment Advice
{{.Advice}}

9. References
{{.References}}
`))

var comparisonTmpl = template.Must(template.New("comparison").Parse(`{{.Title}}

1. Overview
{{.Overview}}

2. Rankings
{{.Rankings}}

3. Financial Comparison
{{.Financial}}

4. R&D Comparison
{{.RD}}

5. Risk Comparison
{{.Risk}}

6. Potential Comparison
{{.Potential}}

7. Investment Advice
{{.Advice}}

8. References
{{.References}}
`))

// CompanyInput 单公司报告的输入，叙述文本为空时对应章节留空
type CompanyInput struct {
	Record    model.CompanyRecord
	Metrics   model.ScoredMetrics
	Academic  string
	Financial string
	Risk      string
	Papers    []model.ScoredPaper
}

type companySections struct {
	Title, Summary, Methodology, Profile, Financial string
	RD, Risk, Industry, Advice, References          string
}

type comparisonSections struct {
	Title, Overview, Rankings, Financial, RD string
	Risk, Potential, Advice, References      string
}

// ComposeCompany 生成单公司分析报告
func ComposeCompany(in CompanyInput) string {
	return execute(companyTmpl, companySections{
		Title:       CompanyTitle,
		Summary:     executiveSummary(in.Record, in.Metrics),
		Methodology: methodology(len(in.Papers)),
		Profile:     companyProfile(in.Record),
		Financial:   strings.TrimSpace(in.Financial),
		RD:          rdAnalysis(in.Record, in.Metrics.FinancialMetrics, in.Academic),
		Risk:        strings.TrimSpace(in.Risk),
		Industry:    industryComparison(in.Metrics.FinancialMetrics),
		Advice:      investmentAdvice(in.Metrics),
		References:  FormatReferences(in.Papers),
	})
}

// ComposeComparison 生成多公司比较报告
func ComposeComparison(c ranking.Comparison, papers []model.ScoredPaper) string {
	return execute(comparisonTmpl, comparisonSections{
		Title:      ComparisonTitle,
		Overview:   overview(c),
		Rankings:   formatRanking(c.InvestmentRanking),
		Financial:  financialComparison(c),
		RD:         rdComparison(c),
		Risk:       riskComparison(c),
		Potential:  "Potential ranking:\n" + formatRanking(c.PotentialRanking),
		Advice:     comparisonAdvice(c),
		References: FormatReferences(papers),
	})
}

func execute(t *template.Template, data any) string {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		logger.Log.Errorf("渲染报告模板 %s 失败: %v", t.Name(), err)
	}
	return sb.String()
}

// FormatReferences "{i}. {title} - {authors}"，按行拼接
func FormatReferences(papers []model.ScoredPaper) string {
	if len(papers) == 0 {
		return NoReferences
	}
	lines := make([]string, 0, len(papers))
	for i, p := range papers {
		title, authors := p.Title, p.Authors
		if title == "" {
			title = UnknownTitle
		}
		if authors == "" {
			authors = UnknownAuthors
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, title, authors))
	}
	return strings.Join(lines, "\n")
}

func executiveSummary(rec model.CompanyRecord, m model.ScoredMetrics) string {
	advice := scoring.Advise(m.InvestmentScore, m.RiskScore)
	return fmt.Sprintf("This report analyses %s (%s) from academic, financial and risk perspectives.\n"+
		"Potential score: %.2f; investment score: %.2f; overall risk level: %s; recommendation: %s.",
		rec.Name, model.Str(rec.Business), m.PotentialScore, m.InvestmentScore,
		scoring.ScoreToLevel(m.RiskScore), advice.Tier)
}

func methodology(papers int) string {
	return fmt.Sprintf("Multi-perspective analysis combining academic research with practical experience. "+
		"Financial ratios are derived from the reported figures (unit: %s) and combined into weighted "+
		"potential and investment scores; %d reference paper(s) were selected by citations, recency and journal impact.",
		metrics.AmountUnit, papers)
}

func companyProfile(rec model.CompanyRecord) string {
	lines := []string{
		"Name: " + rec.Name,
		"Business: " + model.Str(rec.Business),
		"Revenue: " + model.Str(rec.Revenue),
		"Net profit: " + model.Str(rec.NetProfit),
		"R&D investment: " + model.Str(rec.RDInvestment),
		fmt.Sprintf("Patents: %d", rec.Patents()),
		"Gross margin: " + model.Str(rec.GrossMargin),
		"Debt ratio: " + model.Str(rec.DebtRatio),
	}
	return strings.Join(lines, "\n")
}

func rdAnalysis(rec model.CompanyRecord, m model.FinancialMetrics, academic string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "R&D investment\n- R&D to revenue ratio: %.2f%%\n- R&D intensity: %s\n\n",
		m.RDRatio, scoring.RDIntensity(m.RDRatio))
	fmt.Fprintf(&sb, "Innovation\n- Patent density: %.2f per %s\n- Innovation efficiency: %s\n\n",
		m.PatentDensity, metrics.AmountUnit, scoring.InnovationEfficiency(m.PatentDensity))
	fmt.Fprintf(&sb, "Technology risk\n- Level: %s\n- Advice: %s",
		model.Str(rec.TechRisk), scoring.TechRiskAdvice(model.Str(rec.TechRisk)))
	if academic = strings.TrimSpace(academic); academic != "" {
		sb.WriteString("\n\n")
		sb.WriteString(academic)
	}
	return sb.String()
}

func industryComparison(m model.FinancialMetrics) string {
	return fmt.Sprintf("Financial indicators\n- Net profit margin: %.2f%%\n- R&D ratio: %.2f%%\n\n"+
		"Innovation\n- Patent density: %.2f per %s\n\n"+
		"Risk\n- Composite risk score: %.2f\n\n"+
		"Note: these indicators need to be compared with industry averages for a firmer conclusion.",
		m.NetProfitMargin, m.RDRatio, m.PatentDensity, metrics.AmountUnit, m.RiskScore)
}

func investmentAdvice(m model.ScoredMetrics) string {
	advice := scoring.Advise(m.InvestmentScore, m.RiskScore)
	return fmt.Sprintf("Investment score: %.2f\nRisk level: %s\nRecommendation: %s",
		m.InvestmentScore, scoring.ScoreToLevel(m.RiskScore), advice.Text)
}

func overview(c ranking.Comparison) string {
	names := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		names = append(names, e.Name)
	}
	return fmt.Sprintf("This report compares %d companies: %s.", len(names), strings.Join(names, ", "))
}

func formatRanking(r []ranking.Ranked) string {
	lines := make([]string, 0, len(r))
	for _, x := range r {
		lines = append(lines, fmt.Sprintf("%d. %s: %.2f", x.Rank, x.Name, x.Score))
	}
	return strings.Join(lines, "\n")
}

func financialComparison(c ranking.Comparison) string {
	var sb strings.Builder
	sb.WriteString("metric\tcompany\tvalue\tvs average\n")
	sb.WriteString(strings.Repeat("-", 60))
	for i, e := range c.Entries {
		d := c.Deltas[i]
		rows := []struct {
			name  string
			value float64
			delta float64
		}{
			{"net_profit_margin", e.Metrics.NetProfitMargin, d.NetProfitMargin},
			{"rd_ratio", e.Metrics.RDRatio, d.RDRatio},
			{"patent_density", e.Metrics.PatentDensity, d.PatentDensity},
		}
		for _, row := range rows {
			fmt.Fprintf(&sb, "\n%s\t%s\t%.2f\t%s", row.name, e.Name, row.value, ranking.FormatDelta(row.delta))
		}
	}
	return sb.String()
}

func rdComparison(c ranking.Comparison) string {
	var sb strings.Builder
	sb.WriteString("R&D ratio")
	for i, e := range c.Entries {
		fmt.Fprintf(&sb, "\n- %s: %.2f%% (%s%%)", e.Name, e.Metrics.RDRatio, ranking.FormatDelta(c.Deltas[i].RDRatio))
	}
	sb.WriteString("\n\nPatent density")
	for i, e := range c.Entries {
		fmt.Fprintf(&sb, "\n- %s: %.2f per %s (%s)", e.Name, e.Metrics.PatentDensity, metrics.AmountUnit,
			ranking.FormatDelta(c.Deltas[i].PatentDensity))
	}
	return sb.String()
}

func riskComparison(c ranking.Comparison) string {
	var sb strings.Builder
	sb.WriteString("Composite risk score")
	for i, e := range c.Entries {
		fmt.Fprintf(&sb, "\n- %s: %.2f (%s)", e.Name, e.Metrics.RiskScore, ranking.FormatDelta(c.Deltas[i].RiskScore))
	}
	sb.WriteString("\n\nRisk level distribution")
	for _, level := range model.RiskLevels {
		fmt.Fprintf(&sb, "\n- %s risk: %d companies", level, c.RiskDistribution[level])
	}
	return sb.String()
}

func comparisonAdvice(c ranking.Comparison) string {
	blocks := make([]string, 0, len(c.InvestmentRanking))
	for _, r := range c.InvestmentRanking {
		e := c.EntryOf(r)
		advice := scoring.Advise(r.Score, e.Metrics.RiskScore)
		blocks = append(blocks, fmt.Sprintf("%d. %s\n   - Investment score: %.2f\n   - Risk level: %s\n   - Recommendation: %s",
			r.Rank, r.Name, r.Score, scoring.ScoreToLevel(e.Metrics.RiskScore), advice.Text))
	}
	return strings.Join(blocks, "\n\n")
}
