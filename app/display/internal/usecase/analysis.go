package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/engine"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/report"
	"github.com/iWorld-y/report_analyst/app/display/internal/domain"
)

// Runner 批量分析执行者，由 engine.Engine 实现
type Runner interface {
	RunBatch(ctx context.Context, recs []model.CompanyRecord, progress engine.ProgressFunc) engine.BatchResult
}

// CompanySource 待分析公司数据来源
type CompanySource interface {
	Companies() ([]model.CompanyRecord, error)
}

// AnalysisUseCase 后台触发批量分析并跟踪进度，同一时间只允许一个批次
type AnalysisUseCase struct {
	runner    Runner
	companies CompanySource
	log       *log.Helper

	mu       sync.Mutex
	progress domain.Progress
}

// NewAnalysisUseCase runner 为 nil 时只读
func NewAnalysisUseCase(runner Runner, companies CompanySource, logger log.Logger) *AnalysisUseCase {
	return &AnalysisUseCase{
		runner:    runner,
		companies: companies,
		log:       log.NewHelper(logger),
		progress:  domain.Progress{Status: "idle"},
	}
}

// Trigger 在后台启动一个批次，立即返回当前进度
func (uc *AnalysisUseCase) Trigger(ctx context.Context) (*domain.Progress, error) {
	if uc.runner == nil || uc.companies == nil {
		return nil, errors.ServiceUnavailable("ANALYST_DISABLED", "analysis engine is not configured")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.progress.Running {
		return nil, errors.Conflict("RUN_IN_PROGRESS", "an analysis run is already in progress")
	}

	recs, err := uc.companies.Companies()
	if err != nil {
		uc.log.WithContext(ctx).Errorf("failed to load companies: %v", err)
		return nil, errors.InternalServer("COMPANIES_UNAVAILABLE", "failed to load company data")
	}
	if len(recs) == 0 {
		return nil, errors.BadRequest("NO_COMPANIES", "no company data configured")
	}

	uc.progress = domain.Progress{
		Running:   true,
		Status:    "queued",
		Total:     len(recs),
		StartedAt: time.Now(),
	}
	p := uc.progress
	go uc.run(recs)

	return &p, nil
}

// Progress 当前或最近一次批次的进度
func (uc *AnalysisUseCase) Progress() *domain.Progress {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	p := uc.progress
	return &p
}

func (uc *AnalysisUseCase) run(recs []model.CompanyRecord) {
	// 请求结束后批次仍需继续
	res := uc.runner.RunBatch(context.Background(), recs, func(status string, percent int) {
		uc.mu.Lock()
		uc.progress.Status = status
		uc.progress.Percent = percent
		uc.mu.Unlock()
	})

	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.progress.Running = false
	uc.progress.RunID = res.RunID
	uc.progress.Succeeded = res.Succeeded
	uc.progress.Percent = 100
	if res.Succeeded == 0 {
		uc.progress.Status = "failed"
		uc.progress.Error = report.BatchFailureMessage
		uc.log.Errorf("analysis run %s failed: no company succeeded", res.RunID)
		return
	}
	uc.progress.Status = "completed"
	uc.log.Infof("analysis run %s completed, %d/%d succeeded", res.RunID, res.Succeeded, len(recs))
}
