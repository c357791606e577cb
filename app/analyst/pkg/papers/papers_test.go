package papers

import (
	"fmt"
	"testing"

	"github.com/iWorld-y/report_analyst/app/analyst/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func i(v int) *int { return &v }

func TestDedupe_LastWins(t *testing.T) {
	in := []model.ReferencePaper{
		{Title: "A", Authors: "first"},
		{Title: "B", Authors: "b"},
		{Title: "A", Authors: "second"},
	}

	got := Dedupe(in)

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "second", got[0].Authors)
	assert.Equal(t, "B", got[1].Title)
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		paper model.ReferencePaper
		want  float64
	}{
		{"no fields", model.ReferencePaper{Title: "B"}, 0},
		{"citations capped", model.ReferencePaper{CitationCount: f(1000)}, 5},
		{"citations partial", model.ReferencePaper{CitationCount: f(250)}, 2.5},
		{"current year", model.ReferencePaper{Year: i(2024)}, 5},
		{"four years old", model.ReferencePaper{Year: i(2020)}, 3},
		{"very old", model.ReferencePaper{Year: i(1990)}, 0},
		{"impact factor capped", model.ReferencePaper{JournalImpactFactor: f(12.3)}, 5},
		{"all fields", model.ReferencePaper{CitationCount: f(100), Year: i(2022), JournalImpactFactor: f(2)}, 1 + 4 + 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(tt.paper), 1e-9)
		})
	}
}

func TestRank(t *testing.T) {
	in := []model.ReferencePaper{
		{Title: "B"},
		{Title: "A", CitationCount: f(1000)},
	}

	got := Rank(in)

	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.InDelta(t, 5, got[0].Score, 1e-9)
	assert.Equal(t, "B", got[1].Title)
	assert.Zero(t, got[1].Score)
}

func TestRank_TruncatesToTopN(t *testing.T) {
	var in []model.ReferencePaper
	for n := 0; n < 7; n++ {
		in = append(in, model.ReferencePaper{Title: fmt.Sprintf("paper-%d", n), CitationCount: f(float64(n * 100))})
	}

	got := Rank(in)

	require.Len(t, got, TopN)
	assert.Equal(t, "paper-6", got[0].Title)
	assert.Equal(t, "paper-2", got[4].Title)
}

func TestRank_StableTies(t *testing.T) {
	in := []model.ReferencePaper{
		{Title: "x"}, {Title: "y"}, {Title: "z"},
	}

	got := Rank(in)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"x", "y", "z"}, []string{got[0].Title, got[1].Title, got[2].Title})
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank(nil))
}
