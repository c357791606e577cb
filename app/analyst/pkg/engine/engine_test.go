package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/config"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/report"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/storage"
)

type fakeProvider struct {
	mu       sync.Mutex
	calls    map[model.Perspective]int
	block    func(call int) bool
	errs     map[model.Perspective]error
	papers   map[string][]model.ReferencePaper
	paperErr error
	queries  []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{calls: map[model.Perspective]int{}}
}

func (f *fakeProvider) GetNarrativeAnalysis(ctx context.Context, rec model.CompanyRecord, p model.Perspective) (string, error) {
	f.mu.Lock()
	f.calls[p]++
	n := f.calls[p]
	f.mu.Unlock()

	if p == model.PerspectiveAcademic && f.block != nil && f.block(n) {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err := f.errs[p]; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s narrative for %s", p, rec.Name), nil
}

func (f *fakeProvider) SearchReferencePapers(_ context.Context, query string, _ int) ([]model.ReferencePaper, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.paperErr != nil {
		return nil, f.paperErr
	}
	return f.papers[query], nil
}

func (f *fakeProvider) count(p model.Perspective) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[p]
}

type fakeStore struct {
	mu         sync.Mutex
	runs       []string
	reports    []storage.CompanyReport
	comparison string
	status     string
}

func (s *fakeStore) CreateRun(_ context.Context, title string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, title)
	return "run-1", nil
}

func (s *fakeStore) SaveCompanyReport(_ context.Context, runID string, r storage.CompanyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if runID != "run-1" {
		return errors.New("unknown run")
	}
	s.reports = append(s.reports, r)
	return nil
}

func (s *fakeStore) SaveComparison(_ context.Context, _ string, report string) error {
	s.comparison = report
	return nil
}

func (s *fakeStore) FinishRun(_ context.Context, _ string, status string) error {
	s.status = status
	return nil
}

// company 构造公司数据，revenue 为空串时视为缺少该字段
func company(name, revenue, netProfit string) model.CompanyRecord {
	patents := 120
	rec := model.CompanyRecord{
		Name:          name,
		Business:      model.Ptr("智能控制系统研发和制造"),
		Revenue:       model.Ptr(revenue),
		NetProfit:     model.Ptr(netProfit),
		RDInvestment:  model.Ptr("1.8亿元"),
		PatentCount:   &patents,
		GrossMargin:   model.Ptr("40%"),
		DebtRatio:     model.Ptr("42%"),
		MarketRisk:    model.Ptr("high"),
		OperationRisk: model.Ptr("medium"),
		FinancialRisk: model.Ptr("medium"),
		TechRisk:      model.Ptr("low"),
	}
	if revenue == "" {
		rec.Revenue = nil
	}
	return rec
}

func fastEngine(p *fakeProvider, store Store) *Engine {
	return New(Options{
		Provider:   p,
		Store:      store,
		Timeout:    time.Second,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
}

func TestNew_Defaults(t *testing.T) {
	e := New(Options{})
	assert.Equal(t, 600*time.Second, e.timeout)
	assert.Equal(t, 3, e.maxRetries)
	assert.Equal(t, 2*time.Second, e.retryDelay)
	assert.Len(t, e.paperQueries, 5)
	assert.Equal(t, 3, e.papersPerQuery)
}

func TestAnalyzeCompany(t *testing.T) {
	p := newFakeProvider()
	e := fastEngine(p, nil)

	text := e.AnalyzeCompany(context.Background(), company("振邦智能", "12.5亿元", "0.9亿元"))

	require.NotEmpty(t, text)
	sections := report.SplitSections(text, report.CompanyHeaders)
	require.Len(t, sections, len(report.CompanyHeaders))
	assert.Equal(t, "financial narrative for 振邦智能", sections[3].Body)
	assert.Contains(t, sections[4].Body, "academic narrative for 振邦智能")
	assert.Equal(t, "risk narrative for 振邦智能", sections[5].Body)
	assert.Equal(t, report.NoReferences, sections[8].Body)
	assert.Len(t, p.queries, 5)
}

func TestAnalyzeCompany_MissingField(t *testing.T) {
	p := newFakeProvider()
	e := fastEngine(p, nil)

	rec := company("振邦智能", "", "0.9亿元")
	assert.Equal(t, "", e.AnalyzeCompany(context.Background(), rec))
	assert.Equal(t, "", e.AnalyzeWithTimeout(context.Background(), rec))
	assert.Zero(t, p.count(model.PerspectiveAcademic))
}

func TestAnalyzeCompany_ProviderFailureLeavesSectionEmpty(t *testing.T) {
	p := newFakeProvider()
	p.errs = map[model.Perspective]error{model.PerspectiveFinancial: model.ErrProvider}
	e := fastEngine(p, nil)

	text := e.AnalyzeCompany(context.Background(), company("振邦智能", "12.5亿元", "0.9亿元"))

	sections := report.SplitSections(text, report.CompanyHeaders)
	require.Len(t, sections, len(report.CompanyHeaders))
	assert.Empty(t, sections[3].Body)
	assert.Equal(t, "risk narrative for 振邦智能", sections[5].Body)
}

func TestAnalyzeCompany_ParseFailureUsesDefaults(t *testing.T) {
	e := fastEngine(newFakeProvider(), nil)

	text := e.AnalyzeCompany(context.Background(), company("坏数据", "abc亿元", "0.9亿元"))

	require.NotEmpty(t, text)
	assert.Contains(t, text, "Composite risk score: 2.00")
}

func TestAnalyzeWithTimeout_GivesUp(t *testing.T) {
	p := newFakeProvider()
	p.block = func(int) bool { return true }
	e := New(Options{Provider: p, Timeout: 20 * time.Millisecond, MaxRetries: 3, RetryDelay: time.Millisecond})

	got := e.AnalyzeWithTimeout(context.Background(), company("振邦智能", "12.5亿元", "0.9亿元"))

	assert.Equal(t, "Analysis of company 振邦智能 timed out, please retry", got)
	assert.Equal(t, 3, p.count(model.PerspectiveAcademic))
}

func TestAnalyzeWithTimeout_RecoversOnRetry(t *testing.T) {
	p := newFakeProvider()
	p.block = func(n int) bool { return n == 1 }
	e := New(Options{Provider: p, Timeout: 200 * time.Millisecond, MaxRetries: 3, RetryDelay: time.Millisecond})

	got := e.AnalyzeWithTimeout(context.Background(), company("振邦智能", "12.5亿元", "0.9亿元"))

	assert.True(t, strings.HasPrefix(got, report.CompanyTitle))
	assert.Contains(t, got, "academic narrative for 振邦智能")
	assert.Equal(t, 2, p.count(model.PerspectiveAcademic))
}

func TestAnalyzeWithTimeout_ParentCancelled(t *testing.T) {
	p := newFakeProvider()
	p.block = func(int) bool { return true }
	e := New(Options{Provider: p, Timeout: time.Minute, MaxRetries: 3, RetryDelay: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got := e.AnalyzeWithTimeout(ctx, company("振邦智能", "12.5亿元", "0.9亿元"))
	assert.Equal(t, report.TimeoutMessage("振邦智能"), got)
	assert.Equal(t, 1, p.count(model.PerspectiveAcademic))
}

func TestCompareCompanies_AllFail(t *testing.T) {
	e := fastEngine(newFakeProvider(), nil)

	got := e.CompareCompanies(context.Background(), []model.CompanyRecord{
		company("A", "", "1亿元"),
		{Name: "B"},
	})
	assert.Equal(t, report.BatchFailureMessage, got)

	assert.Equal(t, report.BatchFailureMessage, e.CompareCompanies(context.Background(), nil))
}

func TestCompareCompanies_SkipsInvalid(t *testing.T) {
	e := fastEngine(newFakeProvider(), nil)

	got := e.CompareCompanies(context.Background(), []model.CompanyRecord{
		company("拓维信息", "15.8亿元", "1.2亿元"),
		company("缺数据", "", "1亿元"),
		company("振邦智能", "12.5亿元", "0.9亿元"),
	})

	sections := report.SplitSections(got, report.ComparisonHeaders)
	require.Len(t, sections, len(report.ComparisonHeaders))
	assert.Contains(t, sections[0].Body, "2 companies: 拓维信息, 振邦智能")
	assert.NotContains(t, got, "缺数据")
}

func TestRunBatch(t *testing.T) {
	p := newFakeProvider()
	store := &fakeStore{}
	e := fastEngine(p, store)

	var (
		statuses []string
		percents []int
	)
	res := e.RunBatch(context.Background(), []model.CompanyRecord{
		company("拓维信息", "15.8亿元", "1.2亿元"),
		company("缺数据", "", "1亿元"),
		company("振邦智能", "12.5亿元", "0.9亿元"),
	}, func(status string, percent int) {
		statuses = append(statuses, status)
		percents = append(percents, percent)
	})

	assert.Equal(t, "run-1", res.RunID)
	require.Len(t, res.Companies, 3)
	assert.Equal(t, []string{"拓维信息", "缺数据", "振邦智能"},
		[]string{res.Companies[0].Name, res.Companies[1].Name, res.Companies[2].Name})
	assert.True(t, res.Companies[0].OK())
	assert.Equal(t, storage.ReportStatusInvalid, res.Companies[1].Status)
	assert.Empty(t, res.Companies[1].Report)
	assert.Equal(t, 2, res.Succeeded)
	assert.True(t, strings.HasPrefix(res.Comparison, report.ComparisonTitle))

	require.Len(t, store.reports, 3)
	assert.Equal(t, "振邦智能", store.reports[2].CompanyName)
	assert.Equal(t, res.Comparison, store.comparison)
	assert.Equal(t, storage.RunStatusCompleted, store.status)

	assert.Equal(t, "starting", statuses[0])
	assert.Equal(t, "completed", statuses[len(statuses)-1])
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
}

func TestRunBatch_NoStoreNoSuccess(t *testing.T) {
	e := fastEngine(newFakeProvider(), nil)

	res := e.RunBatch(context.Background(), []model.CompanyRecord{{Name: "空"}}, nil)

	assert.Len(t, res.RunID, 36)
	assert.Zero(t, res.Succeeded)
	assert.Equal(t, report.BatchFailureMessage, res.Comparison)
}

func TestRetrieveReferences(t *testing.T) {
	p := newFakeProvider()
	cites := func(v float64) *float64 { return &v }
	p.papers = map[string][]model.ReferencePaper{
		"q1": {{Title: "dup", Authors: "old"}, {Title: "A", CitationCount: cites(1000)}},
		"q2": {{Title: "dup", Authors: "new", CitationCount: cites(200)}},
	}
	e := New(Options{Provider: p, PaperQueries: []string{"q1", "q2", "q3"}})

	got := e.RetrieveReferences(context.Background())

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "new", got[1].Authors)
	assert.Equal(t, []string{"q1", "q2", "q3"}, p.queries)
}

func TestRetrieveReferences_ProviderError(t *testing.T) {
	p := newFakeProvider()
	p.paperErr = model.ErrProvider
	e := New(Options{Provider: p})

	assert.Empty(t, e.RetrieveReferences(context.Background()))
}

func TestFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	cfg.Analysis.TimeoutSeconds = 30

	e := FromConfig(cfg, newFakeProvider(), nil)

	assert.Equal(t, 30*time.Second, e.timeout)
	assert.Equal(t, 3, e.maxRetries)
	assert.Equal(t, 2*time.Second, e.retryDelay)
	assert.Equal(t, config.DefaultPaperQueries, e.paperQueries)
}
