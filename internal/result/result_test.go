package result

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name        string
		score, tot  int
		wantPercent int
		wantStars   int
	}{
		{"no points", 0, 0, 0, 1},
		{"half", 50, 100, 50, 2},
		{"eighty", 80, 100, 80, 3},
		{"half of two hundred", 100, 200, 50, 2},
		{"rounds half up", 1, 8, 13, 1},
		{"rounds down", 2, 3, 67, 2},
		{"just under", 79, 100, 79, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Evaluate(tc.score, tc.tot, 1, 10)
			require.Equal(t, tc.wantPercent, r.Percentage)
			require.Equal(t, tc.wantStars, r.Stars)
			require.Equal(t, 10, r.TotalQuestions)
		})
	}
}

func TestAdvisorPicksFromList(t *testing.T) {
	a := NewAdvisor(rand.New(rand.NewSource(1)))
	list := AdviceList()
	require.Len(t, list, 25)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		advice := a.Pick()
		require.Contains(t, list, advice)
		seen[advice] = true
	}
	require.Greater(t, len(seen), 1)
}
