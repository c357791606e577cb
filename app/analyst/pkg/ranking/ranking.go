package ranking

import (
	"fmt"
	"sort"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/iWorld-y/report_analyst/app/analyst/pkg/scoring"
)

// Entry 单个分析成功的公司及其指标
type Entry struct {
	Name    string              `json:"name"`
	Metrics model.ScoredMetrics `json:"metrics"`
}

// Averages 各项指标在成功公司集合上的平均值
type Averages struct {
	NetProfitMargin float64 `json:"net_profit_margin"`
	RDRatio         float64 `json:"rd_ratio"`
	PatentDensity   float64 `json:"patent_density"`
	RiskScore       float64 `json:"risk_score"`
}

// Delta 单个公司各指标与平均值的差
type Delta struct {
	Name            string  `json:"name"`
	NetProfitMargin float64 `json:"net_profit_margin"`
	RDRatio         float64 `json:"rd_ratio"`
	PatentDensity   float64 `json:"patent_density"`
	RiskScore       float64 `json:"risk_score"`
}

// Ranked 排名条目，Rank 从 1 开始，Index 为在 Entries 中的位置
type Ranked struct {
	Rank  int     `json:"rank"`
	Index int     `json:"index"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Comparison 多公司对比结果
type Comparison struct {
	Entries           []Entry                 `json:"entries"`
	Averages          Averages                `json:"averages"`
	Deltas            []Delta                 `json:"deltas"`
	RiskDistribution  map[model.RiskLevel]int `json:"risk_distribution"`
	PotentialRanking  []Ranked                `json:"potential_ranking"`
	InvestmentRanking []Ranked                `json:"investment_ranking"`
}

// Compare 计算平均值、差值、风险分布与两项排名
func Compare(entries []Entry) (Comparison, error) {
	if len(entries) == 0 {
		return Comparison{}, model.ErrBatch
	}

	n := float64(len(entries))
	var avg Averages
	for _, e := range entries {
		avg.NetProfitMargin += e.Metrics.NetProfitMargin
		avg.RDRatio += e.Metrics.RDRatio
		avg.PatentDensity += e.Metrics.PatentDensity
		avg.RiskScore += e.Metrics.RiskScore
	}
	avg.NetProfitMargin /= n
	avg.RDRatio /= n
	avg.PatentDensity /= n
	avg.RiskScore /= n

	dist := make(map[model.RiskLevel]int, len(model.RiskLevels))
	for _, level := range model.RiskLevels {
		dist[level] = 0
	}

	deltas := make([]Delta, 0, len(entries))
	for _, e := range entries {
		deltas = append(deltas, Delta{
			Name:            e.Name,
			NetProfitMargin: e.Metrics.NetProfitMargin - avg.NetProfitMargin,
			RDRatio:         e.Metrics.RDRatio - avg.RDRatio,
			PatentDensity:   e.Metrics.PatentDensity - avg.PatentDensity,
			RiskScore:       e.Metrics.RiskScore - avg.RiskScore,
		})
		dist[scoring.ScoreToLevel(e.Metrics.RiskScore)]++
	}

	return Comparison{
		Entries:          append([]Entry(nil), entries...),
		Averages:         avg,
		Deltas:           deltas,
		RiskDistribution: dist,
		PotentialRanking: rank(entries, func(m model.ScoredMetrics) float64 {
			return m.PotentialScore
		}),
		InvestmentRanking: rank(entries, func(m model.ScoredMetrics) float64 {
			return m.InvestmentScore
		}),
	}, nil
}

// rank 降序稳定排序，同分按输入顺序
func rank(entries []Entry, key func(model.ScoredMetrics) float64) []Ranked {
	out := make([]Ranked, 0, len(entries))
	for i, e := range entries {
		out = append(out, Ranked{Index: i, Name: e.Name, Score: key(e.Metrics)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// EntryOf 返回排名条目对应的公司，公司名可能重复，按位置而非名称定位
func (c Comparison) EntryOf(r Ranked) Entry {
	return c.Entries[r.Index]
}

// FormatDelta 两位小数，正数带 "+"，零不带符号
func FormatDelta(d float64) string {
	switch {
	case d > 0:
		return fmt.Sprintf("+%.2f", d)
	case d == 0:
		return "0.00"
	default:
		return fmt.Sprintf("%.2f", d)
	}
}
