package ranking

import (
	"errors"
	"testing"

	"github.com/soar/uknd_exhibit/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var level11 = models.LevelTrack("1-1")

func newRun(runner string, igt uint32, mutate ...func(*models.Run)) models.Run {
	r := models.Run{
		Runner:           runner,
		Track:            level11,
		IGTMs:            igt,
		Category:         models.CategoryAny,
		SubmissionDate:   models.Date{Year: 2023, Month: 5, Day: 17},
		Difficulty:       models.Violent,
		PatchReleaseDate: "2023-04-20",
		Proof:            "https://youtu.be/" + runner,
	}
	for _, m := range mutate {
		m(&r)
	}
	return r
}

func runners(entries []Entry) []string {
	var names []string
	for _, e := range entries {
		names = append(names, e.Run.Runner)
	}
	return names
}

func TestRank_DifficultyBreaksTimeTie(t *testing.T) {
	runs := []models.Run{
		newRun("A", 5000, func(r *models.Run) { r.Difficulty = models.Standard }),
		newRun("B", 5000, func(r *models.Run) { r.Difficulty = models.Violent }),
	}

	entries, err := Rank(runs, level11, models.CategoryAny)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Rank: 1, Run: runs[1]}, entries[0])
	assert.Equal(t, Entry{Rank: 2, Run: runs[0]}, entries[1])
}

func TestRank_TieBreakPrecedence(t *testing.T) {
	tests := []struct {
		name string
		runs []models.Run
		want []string
	}{
		{
			name: "faster wins over everything",
			runs: []models.Run{
				newRun("A", 5001, func(r *models.Run) { r.Difficulty = models.UltrakillMustDie }),
				newRun("B", 5000, func(r *models.Run) { r.Difficulty = models.Harmless }),
			},
			want: []string{"B", "A"},
		},
		{
			name: "difficulty wins over patch and date",
			runs: []models.Run{
				newRun("A", 5000, func(r *models.Run) {
					r.Difficulty = models.Standard
					r.PatchReleaseDate = "2024-01-01"
					r.SubmissionDate = models.Date{Year: 2020}
				}),
				newRun("B", 5000, func(r *models.Run) { r.Difficulty = models.Brutal }),
			},
			want: []string{"B", "A"},
		},
		{
			name: "newer patch wins",
			runs: []models.Run{
				newRun("A", 5000, func(r *models.Run) { r.PatchReleaseDate = "2022-08-16" }),
				newRun("B", 5000, func(r *models.Run) { r.PatchReleaseDate = "2023-04-20" }),
			},
			want: []string{"B", "A"},
		},
		{
			name: "earlier submission wins",
			runs: []models.Run{
				newRun("A", 5000, func(r *models.Run) { r.SubmissionDate = models.Date{Year: 2023, Month: 6, Day: 1} }),
				newRun("B", 5000, func(r *models.Run) { r.SubmissionDate = models.Date{Year: 2023, Month: 5, Day: 1} }),
			},
			want: []string{"B", "A"},
		},
		{
			name: "runner name is the last resort",
			runs: []models.Run{
				newRun("b", 5000),
				newRun("a", 5000),
			},
			want: []string{"a", "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := Rank(tt.runs, level11, models.CategoryAny)
			require.NoError(t, err)
			assert.Equal(t, tt.want, runners(entries))
			for i, e := range entries {
				assert.Equal(t, i+1, e.Rank)
			}
		})
	}
}

func TestRank_Filter(t *testing.T) {
	runs := []models.Run{
		newRun("p", 3000, func(r *models.Run) { r.Category = models.CategoryP }),
		newRun("any", 2000),
		newRun("nomo", 1000, func(r *models.Run) { r.Category = models.CategoryNoMo }),
		newRun("other-track", 500, func(r *models.Run) { r.Track = models.LevelTrack("1-2") }),
		newRun("layer", 400, func(r *models.Run) { r.Track = models.LayerTrack(models.Limbo) }),
	}

	anyBoard, err := Rank(runs, level11, models.CategoryAny)
	require.NoError(t, err)
	assert.Equal(t, []string{"any", "p"}, runners(anyBoard))

	p, err := Rank(runs, level11, models.CategoryP)
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, runners(p))

	nomo, err := Rank(runs, level11, models.CategoryNoMo)
	require.NoError(t, err)
	assert.Equal(t, []string{"nomo"}, runners(nomo))

	limbo, err := Rank(runs, models.LayerTrack(models.Limbo), models.CategoryAny)
	require.NoError(t, err)
	assert.Equal(t, []string{"layer"}, runners(limbo))

	none, err := Rank(runs, models.FullgameTrack(), models.CategoryAny)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRank_Duplicate(t *testing.T) {
	runs := []models.Run{newRun("A", 5000), newRun("B", 4000), newRun("A", 5000)}

	entries, err := Rank(runs, level11, models.CategoryAny)
	assert.Nil(t, entries)
	require.ErrorIs(t, err, ErrDuplicateRecord)

	var dup *DuplicateRecordError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "A", dup.A.Runner)
	assert.Equal(t, dup.A, dup.B)
	assert.Contains(t, err.Error(), "appears twice")
}

func TestRank_SameRunDifferentCategoryIsNotDuplicate(t *testing.T) {
	runs := []models.Run{
		newRun("A", 5000),
		newRun("A", 5000, func(r *models.Run) { r.Category = models.CategoryP }),
	}
	entries, err := Rank(runs, level11, models.CategoryAny)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.CategoryP, entries[0].Run.Category)
}

func TestRank_Idempotent(t *testing.T) {
	runs := []models.Run{
		newRun("c", 7000),
		newRun("a", 5000, func(r *models.Run) { r.Difficulty = models.Brutal }),
		newRun("b", 5000),
		newRun("d", 5000, func(r *models.Run) { r.Category = models.CategoryP }),
	}
	input := append([]models.Run(nil), runs...)

	first, err := Rank(runs, level11, models.CategoryAny)
	require.NoError(t, err)
	second, err := Rank(runs, level11, models.CategoryAny)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, input, runs, "input must not be reordered")
}

func TestCompare_Totality(t *testing.T) {
	base := newRun("A", 5000)
	variants := []models.Run{
		newRun("B", 5000),
		newRun("A", 5001),
		newRun("A", 5000, func(r *models.Run) { r.SubmissionDate = models.Date{Year: 2023, Month: 5, Day: 18} }),
		newRun("A", 5000, func(r *models.Run) { r.Category = models.CategoryP }),
		newRun("A", 5000, func(r *models.Run) { r.Track = models.LevelTrack("1-2") }),
	}
	for _, v := range variants {
		c1, c2 := Compare(base, v), Compare(v, base)
		assert.NotZero(t, c1)
		assert.Equal(t, c1 < 0, c2 > 0, "antisymmetric")
	}
	assert.Zero(t, Compare(base, base))
}
