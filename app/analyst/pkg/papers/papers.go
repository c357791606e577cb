package papers

import (
	"math"
	"sort"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
)

const (
	// ReferenceYear 计算论文时效得分的基准年份
	ReferenceYear = 2024
	// TopN 保留的论文数量
	TopN = 5
)

// Dedupe 按标题去重，同名论文保留最后一篇的内容、第一次出现的位置
func Dedupe(papers []model.ReferencePaper) []model.ReferencePaper {
	index := make(map[string]int, len(papers))
	out := make([]model.ReferencePaper, 0, len(papers))
	for _, p := range papers {
		if i, ok := index[p.Title]; ok {
			out[i] = p
			continue
		}
		index[p.Title] = len(out)
		out = append(out, p)
	}
	return out
}

// Score 论文评分：引用次数、发表年份、期刊影响因子，缺失项记 0
func Score(p model.ReferencePaper) float64 {
	var score float64
	if p.CitationCount != nil {
		score += math.Min(*p.CitationCount/100, 5)
	}
	if p.Year != nil {
		score += math.Max(0, 5-float64(ReferenceYear-*p.Year)/2)
	}
	if p.JournalImpactFactor != nil {
		score += math.Min(*p.JournalImpactFactor, 5)
	}
	return score
}

// Rank 去重、评分、按得分降序稳定排序，返回前 TopN 篇
func Rank(papers []model.ReferencePaper) []model.ScoredPaper {
	unique := Dedupe(papers)
	scored := make([]model.ScoredPaper, 0, len(unique))
	for _, p := range unique {
		scored = append(scored, model.ScoredPaper{ReferencePaper: p, Score: Score(p)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > TopN {
		scored = scored[:TopN]
	}
	return scored
}
