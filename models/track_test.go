package models

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrack_CompareTiers(t *testing.T) {
	ordered := []Track{
		LevelTrack("6-2"),
		LayerTrack(Prelude),
		ActTrack(ActI),
		FullgameTrack(),
	}
	for i := 0; i < len(ordered)-1; i++ {
		assert.Negative(t, ordered[i].Compare(ordered[i+1]), "%s < %s", ordered[i], ordered[i+1])
		assert.Positive(t, ordered[i+1].Compare(ordered[i]))
	}
}

func TestTrack_CompareWithinTier(t *testing.T) {
	assert.Negative(t, LevelTrack("0-1").Compare(LevelTrack("1-1")))
	assert.Negative(t, LevelTrack("6-2").Compare(LevelTrack("0-S")))
	assert.Negative(t, LayerTrack(Limbo).Compare(LayerTrack(Lust)))
	assert.Negative(t, ActTrack(ActI).Compare(ActTrack(ActII)))
	assert.Zero(t, FullgameTrack().Compare(FullgameTrack()))
}

func TestTrack_CustomLevelsSortAfterNamed(t *testing.T) {
	tracks := []Track{
		LevelTrack(CustomLevel("zeta")),
		LevelTrack("P-2"),
		LevelTrack(CustomLevel("alpha")),
		LevelTrack("1-1"),
	}
	slices.SortFunc(tracks, Track.Compare)

	assert.Equal(t, []Track{
		LevelTrack("1-1"),
		LevelTrack("P-2"),
		LevelTrack("alpha"),
		LevelTrack("zeta"),
	}, tracks)
}

func TestTrack_ShallowCompare(t *testing.T) {
	assert.Zero(t, LevelTrack("0-1").ShallowCompare(LevelTrack("6-2")))
	assert.Zero(t, LayerTrack(Limbo).ShallowCompare(LayerTrack(Heresy)))
	assert.Positive(t, FullgameTrack().ShallowCompare(ActTrack(ActII)))
	assert.Negative(t, LevelTrack("custom").ShallowCompare(LayerTrack(Limbo)))
}

func TestTrack_String(t *testing.T) {
	tests := []struct {
		track Track
		want  string
	}{
		{FullgameTrack(), "Fullgame"},
		{ActTrack(ActII), "Act II: Imperfect Hatred"},
		{LayerTrack(Gluttony), "Gluttony"},
		{LevelTrack("1-1"), "1-1: Heart of the Sunrise"},
		{LevelTrack(CustomLevel("Cyber Grind")), "Cyber Grind"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.track.String())
	}
}

func TestParseTrack(t *testing.T) {
	tests := []struct {
		in   string
		want Track
	}{
		{"Fullgame", FullgameTrack()},
		{"fullgame", FullgameTrack()},
		{"Act I", ActTrack(ActI)},
		{"Act I: Infinite Hyperdeath", ActTrack(ActI)},
		{"Wrath", LayerTrack(Wrath)},
		{"4-4", LevelTrack("4-4")},
		{"4-4: Clair de Soleil", LevelTrack("4-4")},
		{" my mod ", LevelTrack("my mod")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTrack(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseTrack("  ")
	assert.Error(t, err)
}

func TestTrack_RoundTripsThroughLabel(t *testing.T) {
	var all []Track
	all = append(all, FullgameTrack())
	for _, a := range Acts() {
		all = append(all, ActTrack(a))
		for _, l := range a.Layers() {
			all = append(all, LayerTrack(l))
			for _, lv := range l.Levels() {
				all = append(all, LevelTrack(lv))
			}
		}
	}
	for _, tr := range all {
		got, err := ParseTrack(tr.String())
		require.NoError(t, err)
		assert.Equal(t, tr, got)
	}
}

func TestTrack_Constituents(t *testing.T) {
	assert.Equal(t, []Track{ActTrack(ActI), ActTrack(ActII)}, FullgameTrack().Constituents())
	assert.Equal(t, []Track{LayerTrack(Greed), LayerTrack(Wrath), LayerTrack(Heresy)}, ActTrack(ActII).Constituents())
	assert.Equal(t, []Track{LevelTrack("3-1"), LevelTrack("3-2")}, LayerTrack(Gluttony).Constituents())
	assert.Empty(t, LevelTrack("3-1").Constituents())
}

func TestLevel_Custom(t *testing.T) {
	assert.False(t, Level("2-2").IsCustom())
	assert.Equal(t, "Death at 20,000 Volts", Level("2-2").Title())
	assert.True(t, CustomLevel("9-9").IsCustom())
	assert.Empty(t, CustomLevel("9-9").Title())
}

func TestParseLayerAndAct(t *testing.T) {
	l, err := ParseLayer("Heresy")
	require.NoError(t, err)
	assert.Equal(t, Heresy, l)
	_, err = ParseLayer("Violence")
	assert.Error(t, err)

	a, err := ParseAct("Act II")
	require.NoError(t, err)
	assert.Equal(t, ActII, a)
	_, err = ParseAct("Act III")
	assert.Error(t, err)
}

func TestTrackID(t *testing.T) {
	tracks := map[Track]string{
		FullgameTrack():                 "fullgame",
		ActTrack(ActII):                 "Act II",
		LayerTrack(Heresy):              "Heresy",
		LevelTrack("4-S"):               "4-S",
		LevelTrack(CustomLevel("My 1")): "My 1",
	}
	for track, id := range tracks {
		assert.Equal(t, id, track.ID())
		parsed, err := ParseTrack(track.ID())
		require.NoError(t, err)
		assert.Equal(t, track, parsed, "ID round-trips through ParseTrack")
	}
}
