package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soar/uknd_exhibit/models"
	"github.com/soar/uknd_exhibit/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatIGT(t *testing.T) {
	tests := []struct {
		ms   uint32
		want string
	}{
		{0, "00:00:000"},
		{45377, "00:45:377"},
		{400000, "06:40:000"},
		{59999, "00:59:999"},
		{75 * 60 * 1000, "75:00:000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatIGT(tt.ms), "%d ms", tt.ms)
	}
}

func TestRelativeDate(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		date models.Date
		want string
	}{
		{models.Date{}, "unknown"},
		{models.Date{Year: 2022, Month: 6, Day: 1}, "2 years ago"},
		{models.Date{Year: 2023, Month: 6, Day: 1}, "1 year ago"},
		{models.Date{Year: 2024, Month: 3, Day: 1}, "3 months ago"},
		{models.Date{Year: 2024, Month: 6, Day: 14}, "1 day ago"},
		{models.Date{Year: 2024, Month: 6, Day: 10}, "5 days ago"},
		{models.Date{Year: 2024, Month: 6, Day: 15}, "12 hours ago"},
		{models.Date{Year: 2024}, "5 months ago"},
		{models.Date{Year: 2025, Month: 1, Day: 1}, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeDate(tt.date, now), "%s", tt.date)
	}
}

func TestRunnerURL(t *testing.T) {
	assert.Equal(t, "https://www.speedrun.com/users/Westaxle", RunnerURL("Westaxle"))
	assert.Equal(t, "https://www.speedrun.com/users/a%2Fb", RunnerURL("a/b"))
}

func TestPageName(t *testing.T) {
	sel := ranking.Selection{Track: models.LevelTrack("1-1"), Category: models.CategoryP}
	assert.Equal(t, "level_1-1_P.html", PageName(sel))
}

func sampleRun(runner string, track models.Track, igt uint32, cat models.Category) models.Run {
	return models.Run{
		Runner:           runner,
		Track:            track,
		IGTMs:            igt,
		Category:         cat,
		SubmissionDate:   models.Date{Year: 2024, Month: 1, Day: 2},
		Difficulty:       models.Violent,
		PatchReleaseDate: "2023-04-20",
		Proof:            "https://youtu.be/example",
	}
}

func sampleBoard(t *testing.T) *ranking.Board {
	t.Helper()
	runs := []models.Run{
		sampleRun("Westaxle", models.LayerTrack(models.Limbo), 400000, models.CategoryP),
		sampleRun("TheSast", models.LayerTrack(models.Limbo), 390000, models.CategoryAny),
		sampleRun("TheSast", models.LevelTrack("1-1"), 45377, models.CategoryAny),
		sampleRun("<b>Evil</b>", models.LevelTrack("1-1"), 50000, models.CategoryAny),
	}
	board, err := ranking.BuildBoard(runs)
	require.NoError(t, err)
	return board
}

func TestGenerateSite(t *testing.T) {
	board := sampleBoard(t)
	gen, err := NewGenerator("")
	require.NoError(t, err)
	gen.now = func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }

	dir := t.TempDir()
	def := ranking.DefaultSelection(nil)
	def.Track = models.LayerTrack(models.Limbo)
	paths, err := gen.GenerateSite(context.Background(), dir, board, def)
	require.NoError(t, err)
	assert.Len(t, paths, len(board.Selections)+1)
	assert.Equal(t, filepath.Join(dir, IndexPage), paths[len(paths)-1])

	for _, p := range paths {
		assert.FileExists(t, p)
	}

	index, err := os.ReadFile(filepath.Join(dir, IndexPage))
	require.NoError(t, err)
	page := string(index)
	assert.Contains(t, page, "TheSast")
	assert.Contains(t, page, "Westaxle", "P runs appear on the Any board")
	assert.Contains(t, page, "06:30:000")
	assert.Contains(t, page, "5 months ago")
	assert.Contains(t, page, "layer_Limbo_P.html")
	assert.Contains(t, page, "level_1-1_Any.html")

	level, err := os.ReadFile(filepath.Join(dir, "level_1-1_Any.html"))
	require.NoError(t, err)
	assert.Contains(t, string(level), "00:45:377")
	assert.NotContains(t, string(level), "<b>Evil</b>")
}

func TestGenerateSite_FallsBackToFirstSelection(t *testing.T) {
	board := sampleBoard(t)
	gen, err := NewGenerator("")
	require.NoError(t, err)

	dir := t.TempDir()
	missing := ranking.Selection{Track: models.FullgameTrack(), Category: models.CategoryNoMo}
	_, err = gen.GenerateSite(context.Background(), dir, board, missing)
	require.NoError(t, err)

	index, err := os.ReadFile(filepath.Join(dir, IndexPage))
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(dir, PageName(board.Selections[0])))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(index))
}

func TestGenerateSite_EmptyBoard(t *testing.T) {
	gen, err := NewGenerator("")
	require.NoError(t, err)
	_, err = gen.GenerateSite(context.Background(), t.TempDir(), &ranking.Board{}, ranking.DefaultSelection(nil))
	assert.Error(t, err)
}

func TestPageData_TrackLinksKeepCategory(t *testing.T) {
	board := sampleBoard(t)
	limboP := ranking.Selection{Track: models.LayerTrack(models.Limbo), Category: models.CategoryP}

	data := pageData(board, limboP, time.Now())
	require.Len(t, data.Tracks, 2)
	assert.Equal(t, "Limbo", data.Tracks[0].Label)
	assert.True(t, data.Tracks[0].Selected)
	assert.Equal(t, "layer_Limbo_P.html", data.Tracks[0].Href)
	// 1-1 has no P board, so the link falls back to its first board
	assert.Equal(t, "level_1-1_Any.html", data.Tracks[1].Href)

	require.Len(t, data.Categories, 2)
	assert.Equal(t, "Any%", data.Categories[0].Label)
	assert.Equal(t, "P Rank", data.Categories[1].Label)
	assert.True(t, data.Categories[1].Selected)
}

func TestNewGenerator_ExternalTemplate(t *testing.T) {
	_, err := NewGenerator(filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorContains(t, err, "template file not found")

	bad := filepath.Join(t.TempDir(), "bad.html")
	require.NoError(t, os.WriteFile(bad, []byte("{{.Selection"), 0644))
	_, err = NewGenerator(bad)
	assert.ErrorContains(t, err, "failed to parse external template")

	custom := filepath.Join(t.TempDir(), "custom.html")
	require.NoError(t, os.WriteFile(custom, []byte(
		`<p>{{range .Entries}}{{.Rank}}={{.Run.Runner}}@{{formatIGT .Run.IGTMs}};{{end}}</p>`), 0644))
	gen, err := NewGenerator(custom)
	require.NoError(t, err)

	board := sampleBoard(t)
	out := filepath.Join(t.TempDir(), "out", "page.html")
	sel := ranking.Selection{Track: models.LayerTrack(models.Limbo), Category: models.CategoryAny}
	require.NoError(t, gen.Generate(out, pageData(board, sel, time.Now())))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(got), "1=TheSast@06:30:000;2=Westaxle@06:40:000;")
}

func TestGenerateSite_UnsafeProofIsNeutralised(t *testing.T) {
	run := sampleRun("Mallory", models.LevelTrack("1-1"), 50000, models.CategoryAny)
	run.Proof = "javascript:alert(document.cookie)"
	board, err := ranking.BuildBoard([]models.Run{run})
	require.NoError(t, err)

	gen, err := NewGenerator("")
	require.NoError(t, err)
	dir := t.TempDir()
	_, err = gen.GenerateSite(context.Background(), dir, board, board.Selections[0])
	require.NoError(t, err)

	page, err := os.ReadFile(filepath.Join(dir, IndexPage))
	require.NoError(t, err)
	assert.NotContains(t, string(page), "javascript:")
	assert.Contains(t, string(page), "Mallory")
}

func TestGenerateSite_SimilarCustomLevelsGetOwnPages(t *testing.T) {
	runs := []models.Run{
		sampleRun("a", models.LevelTrack(models.CustomLevel("My Map")), 1000, models.CategoryAny),
		sampleRun("b", models.LevelTrack(models.CustomLevel("My.Map")), 2000, models.CategoryAny),
		sampleRun("c", models.LevelTrack(models.CustomLevel("My-Map")), 3000, models.CategoryAny),
	}
	board, err := ranking.BuildBoard(runs)
	require.NoError(t, err)

	gen, err := NewGenerator("")
	require.NoError(t, err)
	dir := t.TempDir()
	paths, err := gen.GenerateSite(context.Background(), dir, board, board.Selections[0])
	require.NoError(t, err)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, files, len(paths), "every leaderboard has its own file")

	for _, sel := range board.Selections {
		page, err := os.ReadFile(filepath.Join(dir, PageName(sel)))
		require.NoError(t, err)
		assert.Contains(t, string(page), board.Entries[sel][0].Run.Runner+"<")
	}
}
