package insight

import (
	"context"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
)

// Provider 为分析引擎提供叙述性分析与参考论文
// 返回空字符串等同于失败，由调用方按空章节处理
type Provider interface {
	GetNarrativeAnalysis(ctx context.Context, rec model.CompanyRecord, perspective model.Perspective) (string, error)
	SearchReferencePapers(ctx context.Context, query string, maxResults int) ([]model.ReferencePaper, error)
}

// PaperSearcher 学术论文检索
type PaperSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]model.ReferencePaper, error)
}
