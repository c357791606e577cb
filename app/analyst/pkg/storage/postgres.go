package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/config"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
)

// 运行状态
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// 单公司报告状态
const (
	ReportStatusOK      = "ok"
	ReportStatusInvalid = "invalid"
	ReportStatusTimeout = "timeout"
)

// CompanyReport 待保存的单公司分析结果
type CompanyReport struct {
	CompanyName string
	Status      string
	Report      string
	Metrics     model.ScoredMetrics
}

// Storage 基于 Postgres 的报告存储
type Storage struct {
	db *sql.DB
}

// DSN 拼接 lib/pq 连接串
func DSN(cfg config.DBConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// NewStorage 连接数据库并初始化表结构
func NewStorage(ctx context.Context, cfg config.DBConfig) (*Storage, error) {
	return Open(ctx, DSN(cfg))
}

// Open 使用 lib/pq 连接串打开存储
func Open(ctx context.Context, dsn string) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS company_reports (
		id SERIAL PRIMARY KEY,
		run_id TEXT REFERENCES analysis_runs(id),
		company_name TEXT NOT NULL,
		status TEXT NOT NULL,
		report TEXT,
		net_profit_margin DOUBLE PRECISION,
		rd_ratio DOUBLE PRECISION,
		patent_density DOUBLE PRECISION,
		risk_score DOUBLE PRECISION,
		potential_score DOUBLE PRECISION,
		investment_score DOUBLE PRECISION,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS comparison_reports (
		id SERIAL PRIMARY KEY,
		run_id TEXT REFERENCES analysis_runs(id),
		report TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
}

// InitSchema 幂等建表
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// CreateRun 创建一次批量分析记录，返回 uuid
func (s *Storage) CreateRun(ctx context.Context, title string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analysis_runs (id, title, status) VALUES ($1, $2, $3)`,
		id, sanitize(title), RunStatusRunning)
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	return id, nil
}

// FinishRun 更新运行状态
func (s *Storage) FinishRun(ctx context.Context, runID, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE analysis_runs SET status = $1, finished_at = CURRENT_TIMESTAMP WHERE id = $2`,
		status, runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

// SaveCompanyReport 保存单公司报告及其指标
func (s *Storage) SaveCompanyReport(ctx context.Context, runID string, r CompanyReport) error {
	m := r.Metrics
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO company_reports
			(run_id, company_name, status, report, net_profit_margin, rd_ratio, patent_density,
			 risk_score, potential_score, investment_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		runID, sanitize(r.CompanyName), r.Status, sanitize(r.Report),
		m.NetProfitMargin, m.RDRatio, m.PatentDensity, m.RiskScore, m.PotentialScore, m.InvestmentScore)
	if err != nil {
		return fmt.Errorf("save company report %s: %w", r.CompanyName, err)
	}
	return nil
}

// SaveComparison 保存比较报告
func (s *Storage) SaveComparison(ctx context.Context, runID, report string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comparison_reports (run_id, report) VALUES ($1, $2)`,
		runID, sanitize(report))
	if err != nil {
		return fmt.Errorf("save comparison: %w", err)
	}
	return nil
}

// sanitize 移除无效 UTF-8 与 NULL 字节，Postgres 文本字段不接受二者
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ReplaceAll(s, "\x00", "")
}
