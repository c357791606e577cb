package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/gg/gson"
	"github.com/google/uuid"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/config"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/insight"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/logger"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/metrics"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/papers"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/ranking"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/report"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/scoring"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/storage"
)

// Store 分析结果的持久化，nil 表示不保存
type Store interface {
	CreateRun(ctx context.Context, title string) (string, error)
	SaveCompanyReport(ctx context.Context, runID string, r storage.CompanyReport) error
	SaveComparison(ctx context.Context, runID, report string) error
	FinishRun(ctx context.Context, runID, status string) error
}

// ProgressFunc 进度回调，percent 取值 0-100
type ProgressFunc func(status string, percent int)

// Options 引擎参数，零值字段使用默认值
type Options struct {
	Provider       insight.Provider
	Store          Store
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	PaperQueries   []string
	PapersPerQuery int
}

// Engine 分析编排：指标、评分、叙述、报告
type Engine struct {
	provider       insight.Provider
	store          Store
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
	paperQueries   []string
	papersPerQuery int
}

// CompanyResult 单公司分析结果
type CompanyResult struct {
	Name    string              `json:"name"`
	Status  string              `json:"status"`
	Report  string              `json:"report"`
	Metrics model.ScoredMetrics `json:"metrics"`
}

// OK 分析是否成功
func (r CompanyResult) OK() bool {
	return r.Status == storage.ReportStatusOK
}

// BatchResult 一次批量分析的全部结果，公司顺序与输入一致
type BatchResult struct {
	RunID      string          `json:"run_id"`
	Companies  []CompanyResult `json:"companies"`
	Comparison string          `json:"comparison"`
	Succeeded  int             `json:"succeeded"`
}

// New 创建引擎
func New(opts Options) *Engine {
	e := &Engine{
		provider:       opts.Provider,
		store:          opts.Store,
		timeout:        opts.Timeout,
		maxRetries:     opts.MaxRetries,
		retryDelay:     opts.RetryDelay,
		paperQueries:   opts.PaperQueries,
		papersPerQuery: opts.PapersPerQuery,
	}
	if e.timeout <= 0 {
		e.timeout = 600 * time.Second
	}
	if e.maxRetries <= 0 {
		e.maxRetries = 3
	}
	if e.retryDelay <= 0 {
		e.retryDelay = 2 * time.Second
	}
	if len(e.paperQueries) == 0 {
		e.paperQueries = config.DefaultPaperQueries
	}
	if e.papersPerQuery <= 0 {
		e.papersPerQuery = 3
	}
	return e
}

// RetrieveReferences 按固定查询检索研究方法论文，评分后取前 5 篇
// 单个查询失败只跳过该查询
func (e *Engine) RetrieveReferences(ctx context.Context) []model.ScoredPaper {
	if e.provider == nil {
		return nil
	}
	var all []model.ReferencePaper
	for _, q := range e.paperQueries {
		found, err := e.provider.SearchReferencePapers(ctx, q, e.papersPerQuery)
		if err != nil {
			logger.Log.Warnf("检索论文失败 [%s]: %v", q, err)
			continue
		}
		all = append(all, found...)
	}
	ranked := papers.Rank(all)
	logger.Log.Debugf("检索到 %d 篇高质量相关论文", len(ranked))
	return ranked
}

// AnalyzeCompany 分析单个公司，数据无效时返回空字符串
func (e *Engine) AnalyzeCompany(ctx context.Context, rec model.CompanyRecord) string {
	if !e.valid(rec) {
		return ""
	}
	return e.analyze(ctx, rec, e.RetrieveReferences(ctx)).Report
}

// AnalyzeWithTimeout 带超时与重试的单公司分析，最终超时返回固定提示文本
func (e *Engine) AnalyzeWithTimeout(ctx context.Context, rec model.CompanyRecord) string {
	if !e.valid(rec) {
		return ""
	}
	return e.analyzeWithTimeout(ctx, rec, e.RetrieveReferences(ctx)).Report
}

// CompareCompanies 逐个分析公司并生成比较报告，全部失败时返回固定失败文本
func (e *Engine) CompareCompanies(ctx context.Context, recs []model.CompanyRecord) string {
	refs := e.RetrieveReferences(ctx)
	results := e.analyzeAll(ctx, recs, refs, nil)
	return e.compare(results, refs)
}

// RunBatch 批量分析：单公司报告、比较报告与持久化
func (e *Engine) RunBatch(ctx context.Context, recs []model.CompanyRecord, progress ProgressFunc) BatchResult {
	notify := func(status string, percent int) {
		if progress != nil {
			progress(status, percent)
		}
	}
	logger.Log.Infof("开始批量分析，共 %d 家公司", len(recs))
	notify("starting", 0)

	runID := e.createRun(ctx, len(recs))

	notify("retrieving references", 5)
	refs := e.RetrieveReferences(ctx)

	results := e.analyzeAll(ctx, recs, refs, func(done int, res CompanyResult) {
		e.saveCompany(ctx, runID, res)
		percent := 10 + int(float64(done)/float64(len(recs))*70)
		notify(fmt.Sprintf("processed company: %s", res.Name), percent)
	})

	notify("generating comparison", 85)
	comparison := e.compare(results, refs)

	batch := BatchResult{RunID: runID, Companies: results, Comparison: comparison}
	for _, r := range results {
		if r.OK() {
			batch.Succeeded++
		}
	}

	if e.store != nil {
		status := storage.RunStatusCompleted
		if batch.Succeeded == 0 {
			status = storage.RunStatusFailed
		}
		if err := e.store.SaveComparison(ctx, runID, comparison); err != nil {
			logger.Log.Errorf("保存比较报告失败: %v", err)
		}
		if err := e.store.FinishRun(ctx, runID, status); err != nil {
			logger.Log.Errorf("更新运行状态失败: %v", err)
		}
	}

	logger.Log.Infof("批量分析完成 [%s]，成功 %d/%d", runID, batch.Succeeded, len(recs))
	notify("completed", 100)
	return batch
}

func (e *Engine) createRun(ctx context.Context, n int) string {
	if e.store != nil {
		id, err := e.store.CreateRun(ctx, fmt.Sprintf("%s (%d)", report.ComparisonTitle, n))
		if err == nil {
			return id
		}
		logger.Log.Errorf("无法创建运行记录: %v", err)
	}
	return uuid.NewString()
}

func (e *Engine) saveCompany(ctx context.Context, runID string, res CompanyResult) {
	if e.store == nil {
		return
	}
	err := e.store.SaveCompanyReport(ctx, runID, storage.CompanyReport{
		CompanyName: res.Name,
		Status:      res.Status,
		Report:      res.Report,
		Metrics:     res.Metrics,
	})
	if err != nil {
		logger.Log.Errorf("保存公司报告失败 [%s]: %v", res.Name, err)
	}
}

// analyzeAll 按输入顺序逐个分析，onDone 在每家公司完成后调用
func (e *Engine) analyzeAll(ctx context.Context, recs []model.CompanyRecord, refs []model.ScoredPaper, onDone func(int, CompanyResult)) []CompanyResult {
	results := make([]CompanyResult, 0, len(recs))
	for i, rec := range recs {
		var res CompanyResult
		if e.valid(rec) {
			res = e.analyzeWithTimeout(ctx, rec, refs)
		} else {
			res = CompanyResult{Name: rec.Name, Status: storage.ReportStatusInvalid}
		}
		if !res.OK() {
			logger.Log.Warnf("公司 %s 分析失败，跳过", rec.Name)
		}
		results = append(results, res)
		if onDone != nil {
			onDone(i+1, res)
		}
	}
	return results
}

func (e *Engine) compare(results []CompanyResult, refs []model.ScoredPaper) string {
	var entries []ranking.Entry
	for _, r := range results {
		if r.OK() {
			entries = append(entries, ranking.Entry{Name: r.Name, Metrics: r.Metrics})
		}
	}

	c, err := ranking.Compare(entries)
	if err != nil {
		logger.Log.Errorf("没有成功分析任何公司: %v", err)
		return report.BatchFailureMessage
	}
	logger.Log.Debug("公司比较分析完成")
	return report.ComposeComparison(c, refs)
}

func (e *Engine) valid(rec model.CompanyRecord) bool {
	if err := rec.Validate(); err != nil {
		logger.Log.Warnf("公司数据无效: %v", err)
		return false
	}
	return true
}

// analyzeWithTimeout 每次尝试在独立 goroutine 中执行，超时后等待 retryDelay 再重试
func (e *Engine) analyzeWithTimeout(ctx context.Context, rec model.CompanyRecord, refs []model.ScoredPaper) CompanyResult {
	timedOut := CompanyResult{
		Name:   rec.Name,
		Status: storage.ReportStatusTimeout,
		Report: report.TimeoutMessage(rec.Name),
	}

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.timeout)
		done := make(chan CompanyResult, 1)
		go func() {
			done <- e.analyze(attemptCtx, rec, refs)
		}()

		select {
		case res := <-done:
			if attemptCtx.Err() == nil {
				cancel()
				return res
			}
		case <-attemptCtx.Done():
		}
		cancel()

		if ctx.Err() != nil {
			logger.Log.Errorf("分析公司 %s 被取消: %v", rec.Name, ctx.Err())
			return timedOut
		}
		if attempt < e.maxRetries {
			logger.Log.Warnf("分析公司 %s 第 %d 次超时，正在重试...", rec.Name, attempt)
			select {
			case <-ctx.Done():
				return timedOut
			case <-time.After(e.retryDelay):
			}
		}
	}

	logger.Log.Errorf("分析公司 %s 在 %d 次尝试后仍然超时: %v", rec.Name, e.maxRetries, model.ErrTimeout)
	return timedOut
}

// analyze 单公司分析主体，调用方负责校验
func (e *Engine) analyze(ctx context.Context, rec model.CompanyRecord, refs []model.ScoredPaper) CompanyResult {
	m, err := metrics.Compute(rec)
	if err != nil {
		logger.Log.Warnf("公司 %s 使用默认财务指标", rec.Name)
	}
	scored := scoring.Score(m)
	logger.Log.Debugf("公司指标 [%s]: %s", rec.Name, gson.ToString(scored))

	text := report.ComposeCompany(report.CompanyInput{
		Record:    rec,
		Metrics:   scored,
		Academic:  e.narrative(ctx, rec, model.PerspectiveAcademic),
		Financial: e.narrative(ctx, rec, model.PerspectiveFinancial),
		Risk:      e.narrative(ctx, rec, model.PerspectiveRisk),
		Papers:    refs,
	})
	logger.Log.Debugf("公司分析完成 [%s]", rec.Name)

	return CompanyResult{
		Name:    rec.Name,
		Status:  storage.ReportStatusOK,
		Report:  text,
		Metrics: scored,
	}
}

// narrative 失败或空内容时返回空字符串
func (e *Engine) narrative(ctx context.Context, rec model.CompanyRecord, p model.Perspective) string {
	if e.provider == nil {
		return ""
	}
	text, err := e.provider.GetNarrativeAnalysis(ctx, rec, p)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			logger.Log.Warnf("%s 分析中断 [%s]: %v", p, rec.Name, err)
		} else {
			logger.Log.Errorf("%s 分析失败 [%s]: %v", p, rec.Name, err)
		}
		return ""
	}
	if text == "" {
		logger.Log.Warnf("%s 分析返回空内容 [%s]", p, rec.Name)
	}
	return text
}

// FromConfig 按配置创建引擎
func FromConfig(cfg *config.Config, provider insight.Provider, store Store) *Engine {
	return New(Options{
		Provider:       provider,
		Store:          store,
		Timeout:        cfg.Analysis.Timeout(),
		MaxRetries:     cfg.Analysis.MaxRetries,
		RetryDelay:     cfg.Analysis.RetryDelay(),
		PaperQueries:   cfg.Papers.Queries,
		PapersPerQuery: cfg.Papers.ResultsPerQuery,
	})
}
