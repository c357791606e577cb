package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/robfig/cron/v3"

	"github.com/iWorld-y/report_analyst/app/display/internal/conf"
	"github.com/iWorld-y/report_analyst/app/display/internal/usecase"
)

// CronServer 按 analyst.schedule 定时触发批量分析，实现 transport.Server
type CronServer struct {
	cron     *cron.Cron
	schedule string
	uc       *usecase.AnalysisUseCase
	log      *log.Helper
}

func NewCronServer(c *conf.Analyst, uc *usecase.AnalysisUseCase, logger log.Logger) *CronServer {
	s := &CronServer{
		cron: cron.New(),
		uc:   uc,
		log:  log.NewHelper(logger),
	}
	if c != nil {
		s.schedule = c.Schedule
	}
	return s
}

func (s *CronServer) Start(ctx context.Context) error {
	if s.schedule == "" {
		s.log.Info("[cron] no schedule configured, scheduled analysis disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.trigger); err != nil {
		return err
	}
	s.log.Infof("[cron] scheduled analysis: %s", s.schedule)
	s.cron.Start()
	return nil
}

func (s *CronServer) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.log.Info("[cron] stopped")
	return nil
}

func (s *CronServer) trigger() {
	p, err := s.uc.Trigger(context.Background())
	if err != nil {
		s.log.Warnf("[cron] skip scheduled analysis: %v", err)
		return
	}
	s.log.Infof("[cron] scheduled analysis started for %d companies", p.Total)
}
