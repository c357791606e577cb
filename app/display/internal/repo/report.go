package repo

import (
	"context"

	"github.com/iWorld-y/report_analyst/app/display/internal/domain"
)

// ReportRepo 报告存储接口
type ReportRepo interface {
	ListRuns(ctx context.Context, page, pageSize int) ([]*domain.RunSummary, int, error)
	GetRun(ctx context.Context, id string) (*domain.RunDetail, error)
}
