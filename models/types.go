package models

// Run is one timed submission on a single track. Runs are produced by the
// gamedata decoder and never modified afterwards.
type Run struct {
	Runner           string
	Track            Track
	IGTMs            uint32 // In-game time in milliseconds
	Category         Category
	SubmissionDate   Date
	Difficulty       Difficulty
	PatchReleaseDate Patch
	Proof            string // Link to the video or other evidence
}

// Config represents config file structure
type Config struct {
	Source          string      `yaml:"source"`           // Run document path or http(s) URL
	Output          string      `yaml:"output"`           // Output directory
	Template        string      `yaml:"template"`         // Custom template file path
	DefaultTrack    string      `yaml:"default_track"`    // Track shown on index.html
	DefaultCategory Category    `yaml:"default_category"` // Category shown on index.html
	Strict          bool        `yaml:"strict"`           // Fail on consistency findings
	API             APIConfig   `yaml:"api"`
	Cache           CacheConfig `yaml:"cache"` // Cache configuration
}

// APIConfig represents remote document fetch configuration
type APIConfig struct {
	Timeout string `yaml:"timeout"`
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled"` // Whether to enable cache, default true
	Dir     string `yaml:"dir"`     // Cache directory, default ".cache"
	TTL     string `yaml:"ttl"`     // Cache expiration time, default "1h"
}

// CacheEnabled reports whether caching is on, defaulting to true
func (c CacheConfig) CacheEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}
