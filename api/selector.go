package api

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/soar/uknd_exhibit/models"
)

// ResolveTrack matches user input against the tracks that have runs.
// Exact labels and codes win; otherwise the closest fuzzy match is used.
func ResolveTrack(input string, tracks []models.Track) (models.Track, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return models.Track{}, fmt.Errorf("empty track name")
	}

	if parsed, err := models.ParseTrack(input); err == nil {
		for _, t := range tracks {
			if t == parsed {
				return t, nil
			}
		}
	}

	labels := make([]string, len(tracks))
	for i, t := range tracks {
		labels[i] = t.String()
	}
	matches := fuzzy.RankFindNormalizedFold(input, labels)
	if len(matches) == 0 {
		return models.Track{}, fmt.Errorf("no track matches %q", input)
	}
	sort.Sort(matches)
	if len(matches) > 1 && matches[0].Distance == matches[1].Distance {
		return models.Track{}, fmt.Errorf("track %q is ambiguous: %q or %q", input, matches[0].Target, matches[1].Target)
	}
	return tracks[matches[0].OriginalIndex], nil
}

// SelectTrack interactively selects a track. Empty input keeps the default;
// a number picks from the list; anything else is resolved by name. The
// reader is shared between prompts so buffered answers are not lost.
func SelectTrack(in *bufio.Reader, out io.Writer, tracks []models.Track, def models.Track) (models.Track, error) {
	if len(tracks) == 0 {
		return models.Track{}, fmt.Errorf("no available tracks")
	}

	fmt.Fprintf(out, "\nAvailable tracks:\n")
	for i, t := range tracks {
		defaultMark := ""
		if t == def {
			defaultMark = " (default)"
		}
		fmt.Fprintf(out, "  %d. %s%s\n", i+1, t, defaultMark)
	}
	fmt.Fprintf(out, "Select track (1-%d or name, press Enter for default): ", len(tracks))

	input, _ := in.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		fmt.Fprintf(out, "Selected default: %s\n", def)
		return def, nil
	}

	if choice, err := strconv.Atoi(input); err == nil {
		if choice < 1 || choice > len(tracks) {
			return models.Track{}, fmt.Errorf("invalid input")
		}
		selected := tracks[choice-1]
		fmt.Fprintf(out, "Selected: %s\n", selected)
		return selected, nil
	}

	selected, err := ResolveTrack(input, tracks)
	if err != nil {
		return models.Track{}, err
	}
	fmt.Fprintf(out, "Selected: %s\n", selected)
	return selected, nil
}

// SelectCategory interactively selects a category
func SelectCategory(in *bufio.Reader, out io.Writer, categories []models.Category) (models.Category, error) {
	if len(categories) == 0 {
		return "", fmt.Errorf("no available categories")
	}

	fmt.Fprintf(out, "\nAvailable categories:\n")
	for i, c := range categories {
		fmt.Fprintf(out, "  %d. %s\n", i+1, c.Label())
	}
	fmt.Fprintf(out, "Select category (1-%d): ", len(categories))

	input, _ := in.ReadString('\n')
	input = strings.TrimSpace(input)

	choice, err := strconv.Atoi(input)
	if err != nil || choice < 1 || choice > len(categories) {
		if c, perr := models.ParseCategory(input); perr == nil {
			choice = indexOf(categories, c) + 1
		}
	}
	if choice < 1 || choice > len(categories) {
		return "", fmt.Errorf("invalid input")
	}

	selected := categories[choice-1]
	fmt.Fprintf(out, "Selected: %s\n", selected.Label())
	return selected, nil
}

func indexOf(categories []models.Category, c models.Category) int {
	for i, cat := range categories {
		if cat == c {
			return i
		}
	}
	return -1
}
