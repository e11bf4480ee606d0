package ranking

import (
	"errors"
	"slices"

	"github.com/soar/uknd_exhibit/models"
)

// Tracks returns the distinct tracks runs were recorded on, coarsest tier
// first and in play order inside a tier, ready for a track selector
func Tracks(runs []models.Run) []models.Track {
	seen := make(map[models.Track]bool)
	var tracks []models.Track
	for _, r := range runs {
		if !seen[r.Track] {
			seen[r.Track] = true
			tracks = append(tracks, r.Track)
		}
	}
	slices.SortFunc(tracks, func(a, b models.Track) int {
		if c := b.ShallowCompare(a); c != 0 {
			return c
		}
		return a.Compare(b)
	})
	return tracks
}

// DefaultSelection is the leaderboard shown first: the coarsest track on
// the Any board
func DefaultSelection(runs []models.Run) Selection {
	sel := Selection{Track: models.FullgameTrack(), Category: models.CategoryAny}
	if tracks := Tracks(runs); len(tracks) > 0 {
		sel.Track = tracks[0]
	}
	return sel
}

// Board is every non-empty leaderboard of a run collection
type Board struct {
	Selections []Selection // In selector order
	Entries    map[Selection][]Entry
}

// BuildBoard ranks every track and category combination that has runs.
// All duplicate errors are joined so the whole document can be fixed at once.
func BuildBoard(runs []models.Run) (*Board, error) {
	board := &Board{Entries: make(map[Selection][]Entry)}
	var errs []error
	for _, track := range Tracks(runs) {
		for _, category := range models.Categories() {
			entries, err := Rank(runs, track, category)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if len(entries) == 0 {
				continue
			}
			sel := Selection{Track: track, Category: category}
			board.Selections = append(board.Selections, sel)
			board.Entries[sel] = entries
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return board, nil
}

// Categories returns the categories that have a leaderboard for the track
func (b *Board) Categories(track models.Track) []models.Category {
	var cats []models.Category
	for _, sel := range b.Selections {
		if sel.Track == track {
			cats = append(cats, sel.Category)
		}
	}
	return cats
}
