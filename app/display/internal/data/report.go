package data

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/storage"
	"github.com/iWorld-y/report_analyst/app/display/internal/domain"
	"github.com/iWorld-y/report_analyst/app/display/internal/repo"
)

type reportRepo struct {
	data *Data
	log  *log.Helper
}

func NewReportRepo(data *Data, logger log.Logger) repo.ReportRepo {
	return &reportRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

const listRunsQuery = `
SELECT r.id, r.title, r.status, r.created_at,
	COUNT(c.id) AS company_count,
	COALESCE(AVG(c.investment_score) FILTER (WHERE c.status = 'ok'), 0) AS avg_score
FROM analysis_runs r
LEFT JOIN company_reports c ON c.run_id = r.id
GROUP BY r.id, r.title, r.status, r.created_at
ORDER BY r.created_at DESC
LIMIT $1 OFFSET $2`

func (r *reportRepo) ListRuns(ctx context.Context, page, pageSize int) ([]*domain.RunSummary, int, error) {
	offset := (page - 1) * pageSize

	rows, err := r.data.db.QueryContext(ctx, listRunsQuery, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var summaries []*domain.RunSummary
	for rows.Next() {
		s := &domain.RunSummary{}
		if err := rows.Scan(&s.ID, &s.Title, &s.Status, &s.CreatedAt, &s.CompanyCount, &s.AvgInvestmentScore); err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.data.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis_runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

func (r *reportRepo) GetRun(ctx context.Context, id string) (*domain.RunDetail, error) {
	run := &domain.RunDetail{}
	var finished sql.NullTime
	err := r.data.db.QueryRowContext(ctx,
		`SELECT id, title, status, created_at, finished_at FROM analysis_runs WHERE id = $1`, id,
	).Scan(&run.ID, &run.Title, &run.Status, &run.CreatedAt, &finished)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("RUN_NOT_FOUND", "analysis run not found")
		}
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}

	companies, err := r.companyReports(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Companies = companies
	run.CompanyCount = len(companies)

	var sum float64
	var ok int
	for _, c := range companies {
		if c.Status == storage.ReportStatusOK {
			sum += c.Metrics.InvestmentScore
			ok++
		}
	}
	if ok > 0 {
		run.AvgInvestmentScore = sum / float64(ok)
	}

	err = r.data.db.QueryRowContext(ctx,
		`SELECT COALESCE(report, '') FROM comparison_reports WHERE run_id = $1 ORDER BY id DESC LIMIT 1`, id,
	).Scan(&run.Comparison)
	if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return run, nil
}

func (r *reportRepo) companyReports(ctx context.Context, runID string) ([]*domain.CompanyReport, error) {
	rows, err := r.data.db.QueryContext(ctx, `
		SELECT id, company_name, status, COALESCE(report, ''),
			COALESCE(net_profit_margin, 0), COALESCE(rd_ratio, 0), COALESCE(patent_density, 0),
			COALESCE(risk_score, 0), COALESCE(potential_score, 0), COALESCE(investment_score, 0)
		FROM company_reports WHERE run_id = $1 ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*domain.CompanyReport
	for rows.Next() {
		c := &domain.CompanyReport{}
		m := &c.Metrics
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.Status, &c.Report,
			&m.NetProfitMargin, &m.RDRatio, &m.PatentDensity,
			&m.RiskScore, &m.PotentialScore, &m.InvestmentScore); err != nil {
			return nil, err
		}
		reports = append(reports, c)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("failed to read company reports of run %s: %v", runID, err)
		return nil, err
	}
	return reports, nil
}
