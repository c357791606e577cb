package storage

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/config"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "abc", sanitize("a\x00b\x00c"))
	assert.Equal(t, "拓维", sanitize("拓\xff维"))
	assert.Equal(t, "plain", sanitize("plain"))
}

func TestDSN(t *testing.T) {
	got := DSN(config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "analyst"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=analyst sslmode=disable", got)
}

// 需要可用的 Postgres，通过 ANALYST_TEST_DB_HOST 等环境变量启用
func TestStorage_Integration(t *testing.T) {
	host := os.Getenv("ANALYST_TEST_DB_HOST")
	if host == "" {
		t.Skip("ANALYST_TEST_DB_HOST not set")
	}
	port, _ := strconv.Atoi(os.Getenv("ANALYST_TEST_DB_PORT"))
	if port == 0 {
		port = 5432
	}

	ctx := context.Background()
	s, err := NewStorage(ctx, config.DBConfig{
		Host:     host,
		Port:     port,
		User:     os.Getenv("ANALYST_TEST_DB_USER"),
		Password: os.Getenv("ANALYST_TEST_DB_PASSWORD"),
		Name:     os.Getenv("ANALYST_TEST_DB_NAME"),
	})
	require.NoError(t, err)
	defer s.Close()

	runID, err := s.CreateRun(ctx, "integration")
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	require.NoError(t, s.SaveCompanyReport(ctx, runID, CompanyReport{
		CompanyName: "拓维信息",
		Status:      ReportStatusOK,
		Report:      "Company Analysis Report\x00",
		Metrics:     model.ScoredMetrics{PotentialScore: 10.63},
	}))
	require.NoError(t, s.SaveComparison(ctx, runID, "Company Comparison Report"))
	require.NoError(t, s.FinishRun(ctx, runID, RunStatusCompleted))
}
