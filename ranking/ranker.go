// Package ranking orders runs into leaderboards.
package ranking

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/soar/uknd_exhibit/models"
)

// ErrDuplicateRecord means two runs on one leaderboard cannot be ordered
var ErrDuplicateRecord = errors.New("duplicate run")

// DuplicateRecordError carries the two runs that collided
type DuplicateRecordError struct {
	A, B models.Run
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("%s: %s on %s in %s (%dms, %s, patch %s, submitted %s) appears twice",
		ErrDuplicateRecord, e.A.Runner, e.A.Track, e.A.Category,
		e.A.IGTMs, e.A.Difficulty, e.A.PatchReleaseDate, e.A.SubmissionDate)
}

// Unwrap makes errors.Is(err, ErrDuplicateRecord) work
func (e *DuplicateRecordError) Unwrap() error {
	return ErrDuplicateRecord
}

// Entry is a ranked leaderboard row
type Entry struct {
	Rank int // 1-based, unique
	Run  models.Run
}

// Selection identifies one leaderboard
type Selection struct {
	Track    models.Track
	Category models.Category
}

func (s Selection) String() string {
	return fmt.Sprintf("%s / %s", s.Track, s.Category.Label())
}

// Slug returns a file-name safe identifier such as "layer_Limbo_Any".
// Letters, digits and '-' are kept, a space becomes '_' and any other
// byte is written as ~XX, so distinct selections never share a slug.
func (s Selection) Slug() string {
	var b strings.Builder
	b.WriteString(s.Track.Kind.String())
	b.WriteByte('_')
	id := s.Track.ID()
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			b.WriteByte(c)
		case c == ' ':
			b.WriteByte('_')
		default:
			fmt.Fprintf(&b, "~%02X", c)
		}
	}
	b.WriteByte('_')
	b.WriteString(string(s.Category))
	return b.String()
}

// Include reports whether a run belongs on the selected leaderboard
func (s Selection) Include(r models.Run) bool {
	return r.Track == s.Track && r.Category.Qualifies(s.Category)
}

// Compare orders two runs on the same leaderboard: faster first, then
// harder difficulty, newer patch, earlier submission, runner name. The
// category (P before Any) is the last resort for runs shared between the
// P and Any boards.
func Compare(a, b models.Run) int {
	if c := cmp.Compare(a.IGTMs, b.IGTMs); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Difficulty, a.Difficulty); c != 0 {
		return c
	}
	if c := models.ComparePatch(b.PatchReleaseDate, a.PatchReleaseDate); c != 0 {
		return c
	}
	if c := a.SubmissionDate.Compare(b.SubmissionDate); c != 0 {
		return c
	}
	if c := strings.Compare(a.Runner, b.Runner); c != 0 {
		return c
	}
	if c := models.CompareCategory(a.Category, b.Category); c != 0 {
		return c
	}
	return a.Track.Compare(b.Track)
}

// Rank builds the leaderboard for one track and category. The input is not
// modified. Runs that compare equal in every ranking field are reported as
// a *DuplicateRecordError instead of being ranked in arbitrary order.
func Rank(runs []models.Run, track models.Track, category models.Category) ([]Entry, error) {
	sel := Selection{Track: track, Category: category}

	var filtered []models.Run
	for _, r := range runs {
		if sel.Include(r) {
			filtered = append(filtered, r)
		}
	}
	slices.SortStableFunc(filtered, Compare)

	for i := 1; i < len(filtered); i++ {
		if Compare(filtered[i-1], filtered[i]) == 0 {
			return nil, &DuplicateRecordError{A: filtered[i-1], B: filtered[i]}
		}
	}

	entries := make([]Entry, len(filtered))
	for i, r := range filtered {
		entries[i] = Entry{Rank: i + 1, Run: r}
	}
	return entries, nil
}
