package usecase

import (
	"bytes"
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/report"
	"github.com/iWorld-y/report_analyst/app/display/internal/domain"
	"github.com/iWorld-y/report_analyst/app/display/internal/repo"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// ReportUseCase 报告查询业务逻辑
type ReportUseCase struct {
	repo repo.ReportRepo
	md   goldmark.Markdown
	log  *log.Helper
}

// NewReportUseCase 创建报告查询业务逻辑实例
func NewReportUseCase(repo repo.ReportRepo, logger log.Logger) *ReportUseCase {
	return &ReportUseCase{
		repo: repo,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		log: log.NewHelper(logger),
	}
}

// List 分页列出分析批次
func (uc *ReportUseCase) List(ctx context.Context, page, pageSize int) ([]*domain.RunSummary, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return uc.repo.ListRuns(ctx, page, pageSize)
}

// Get 获取批次详情，并按固定章节标题切分渲染
func (uc *ReportUseCase) Get(ctx context.Context, id string) (*domain.RunDetail, error) {
	run, err := uc.repo.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, c := range run.Companies {
		c.Sections = uc.sections(c.Report, report.CompanyHeaders)
	}
	run.ComparisonSections = uc.sections(run.Comparison, report.ComparisonHeaders)
	return run, nil
}

func (uc *ReportUseCase) sections(text string, headers []string) []*domain.Section {
	var out []*domain.Section
	for _, s := range report.SplitSections(text, headers) {
		out = append(out, &domain.Section{
			Header: s.Header,
			Body:   s.Body,
			HTML:   uc.render(s.Body),
		})
	}
	return out
}

func (uc *ReportUseCase) render(body string) string {
	var buf bytes.Buffer
	if err := uc.md.Convert([]byte(body), &buf); err != nil {
		uc.log.Warnf("markdown render failed, falling back to raw text: %v", err)
		return body
	}
	return buf.String()
}
