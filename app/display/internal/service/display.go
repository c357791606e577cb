package service

import (
	nethttp "net/http"
	"strconv"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/report_analyst/app/display/internal/domain"
	"github.com/iWorld-y/report_analyst/app/display/internal/usecase"
)

type DisplayService struct {
	ucReport   *usecase.ReportUseCase
	ucAnalysis *usecase.AnalysisUseCase
	log        *log.Helper
}

func NewDisplayService(ucReport *usecase.ReportUseCase, ucAnalysis *usecase.AnalysisUseCase, logger log.Logger) *DisplayService {
	return &DisplayService{
		ucReport:   ucReport,
		ucAnalysis: ucAnalysis,
		log:        log.NewHelper(logger),
	}
}

// ListRunsReply 批次列表响应
type ListRunsReply struct {
	Runs  []*domain.RunSummary `json:"runs"`
	Total int                  `json:"total"`
}

// RegisterDisplayHTTPServer 注册仪表盘 JSON 接口
func RegisterDisplayHTTPServer(srv *http.Server, s *DisplayService) {
	r := srv.Route("/")
	r.GET("/api/runs", s.ListRuns)
	r.GET("/api/runs/{id}", s.GetRun)
	r.POST("/api/runs", s.TriggerRun)
	r.GET("/api/progress", s.GetProgress)
}

func (s *DisplayService) ListRuns(ctx http.Context) error {
	q := ctx.Query()
	page, err := intParam(q.Get("page"), 1)
	if err != nil {
		return err
	}
	pageSize, err := intParam(q.Get("page_size"), 10)
	if err != nil {
		return err
	}

	runs, total, err := s.ucReport.List(ctx, page, pageSize)
	if err != nil {
		s.log.WithContext(ctx).Errorf("list runs: %v", err)
		return err
	}
	if runs == nil {
		runs = []*domain.RunSummary{}
	}
	return ctx.Result(nethttp.StatusOK, &ListRunsReply{Runs: runs, Total: total})
}

func (s *DisplayService) GetRun(ctx http.Context) error {
	id := ctx.Vars().Get("id")
	if id == "" {
		return errors.BadRequest("INVALID_RUN_ID", "run id is required")
	}
	run, err := s.ucReport.Get(ctx, id)
	if err != nil {
		return err
	}
	return ctx.Result(nethttp.StatusOK, run)
}

func (s *DisplayService) TriggerRun(ctx http.Context) error {
	p, err := s.ucAnalysis.Trigger(ctx)
	if err != nil {
		return err
	}
	s.log.WithContext(ctx).Infof("analysis run triggered for %d companies", p.Total)
	return ctx.Result(nethttp.StatusAccepted, p)
}

func (s *DisplayService) GetProgress(ctx http.Context) error {
	return ctx.Result(nethttp.StatusOK, s.ucAnalysis.Progress())
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.BadRequest("INVALID_PARAMETER", "invalid integer parameter: "+v)
	}
	return n, nil
}
