package cache

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/soar/uknd_exhibit/models"
	"github.com/soar/uknd_exhibit/ranking"
)

const standingsVersion = "1"

// LeaderboardCache stores ranked standings as CSV, one file per leaderboard
type LeaderboardCache struct {
	dir string
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(dir string) *LeaderboardCache {
	if dir == "" {
		dir = DefaultCacheDir
	}
	return &LeaderboardCache{dir: dir}
}

// CacheKey uniquely identifies a leaderboard cache entry
type CacheKey struct {
	Selection ranking.Selection
}

// String returns the string representation of the cache key
func (k *CacheKey) String() string {
	return k.Selection.Slug()
}

// FileName returns the cache file name
func (k *CacheKey) FileName() string {
	return k.String() + ".csv"
}

// CachedLeaderboard represents cached standings
type CachedLeaderboard struct {
	Key      CacheKey
	CachedAt time.Time
	Entries  []ranking.Entry
}

// GetFileName returns the cache file path
func (c *LeaderboardCache) GetFileName(key *CacheKey) string {
	return filepath.Join(c.dir, key.FileName())
}

var standingsHeader = []string{
	"rank", "runner", "igt_ms", "difficulty", "patch_release_date",
	"submission_date", "category", "proof",
}

// Save writes the standings to a CSV file
func (c *LeaderboardCache) Save(data *CachedLeaderboard) (err error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	file, err := os.Create(c.GetFileName(&data.Key))
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close cache file: %w", cerr)
		}
	}()

	writer := csv.NewWriter(file)

	// Metadata rows first, then the header and one row per entry
	sel := data.Key.Selection
	rows := [][]string{
		{"#META", "VERSION", standingsVersion},
		{"#TRACK", sel.Track.Kind.String(), sel.Track.ID()},
		{"#CATEGORY", string(sel.Category)},
		{"#CACHED_AT", data.CachedAt.Format(time.RFC3339)},
		standingsHeader,
	}
	for _, e := range data.Entries {
		r := e.Run
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			r.Runner,
			strconv.FormatUint(uint64(r.IGTMs), 10),
			r.Difficulty.String(),
			string(r.PatchReleaseDate),
			r.SubmissionDate.String(),
			string(r.Category),
			r.Proof,
		})
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// Load reads standings back from a CSV file
// Returns (nil, nil) if the file doesn't exist
func (c *LeaderboardCache) Load(key *CacheKey) (*CachedLeaderboard, error) {
	file, err := os.Open(c.GetFileName(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Metadata rows have fewer fields than data rows
	reader.FieldsPerRecord = -1

	result := &CachedLeaderboard{Key: *key}
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read cache file: %w", err)
		}
		line++

		if strings.HasPrefix(record[0], "#") {
			if record[0] == "#CACHED_AT" && len(record) > 1 {
				result.CachedAt, _ = time.Parse(time.RFC3339, record[1])
			}
			continue
		}
		if record[0] == standingsHeader[0] {
			continue
		}

		entry, err := parseStandingsRow(record, key.Selection.Track)
		if err != nil {
			return nil, fmt.Errorf("cache file line %d: %w", line, err)
		}
		result.Entries = append(result.Entries, entry)
	}

	return result, nil
}

func parseStandingsRow(record []string, track models.Track) (ranking.Entry, error) {
	if len(record) != len(standingsHeader) {
		return ranking.Entry{}, fmt.Errorf("expected %d fields, got %d", len(standingsHeader), len(record))
	}
	rank, err := strconv.Atoi(record[0])
	if err != nil {
		return ranking.Entry{}, fmt.Errorf("invalid rank: %w", err)
	}
	igt, err := strconv.ParseUint(record[2], 10, 32)
	if err != nil {
		return ranking.Entry{}, fmt.Errorf("invalid igt_ms: %w", err)
	}
	difficulty, err := models.ParseDifficulty(record[3])
	if err != nil {
		return ranking.Entry{}, err
	}
	// An unknown submission date is written as an empty field
	var date models.Date
	if record[5] != "" {
		date, err = models.ParseDate(record[5])
		if err != nil {
			return ranking.Entry{}, err
		}
	}
	category, err := models.ParseCategory(record[6])
	if err != nil {
		return ranking.Entry{}, err
	}

	return ranking.Entry{
		Rank: rank,
		Run: models.Run{
			Runner:           record[1],
			Track:            track,
			IGTMs:            uint32(igt),
			Difficulty:       difficulty,
			PatchReleaseDate: models.Patch(record[4]),
			SubmissionDate:   date,
			Category:         category,
			Proof:            record[7],
		},
	}, nil
}

// Exists checks if the cache exists
func (c *LeaderboardCache) Exists(key *CacheKey) bool {
	_, err := os.Stat(c.GetFileName(key))
	return err == nil
}

// GetCacheTime returns the cache modification time
func (c *LeaderboardCache) GetCacheTime(key *CacheKey) (time.Time, error) {
	info, err := os.Stat(c.GetFileName(key))
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// List lists all cache files
func (c *LeaderboardCache) List() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".csv") {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// Clear clears all leaderboard cache
func (c *LeaderboardCache) Clear() error {
	files, err := c.List()
	if err != nil {
		return err
	}
	for _, name := range files {
		if err := os.Remove(filepath.Join(c.dir, name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}
