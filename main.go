package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/soar/uknd_exhibit/api"
	"github.com/soar/uknd_exhibit/cache"
	"github.com/soar/uknd_exhibit/gamedata"
	"github.com/soar/uknd_exhibit/generator"
	"github.com/soar/uknd_exhibit/models"
	"github.com/soar/uknd_exhibit/ranking"
	"gopkg.in/yaml.v3"
)

const (
	version = "1.0.0"

	// Editors often write a file in several steps
	watchDebounce = 200 * time.Millisecond
)

var (
	success = color.New(color.FgGreen).PrintfFunc()
	warnf   = color.New(color.FgYellow).FprintfFunc()
	errorf  = color.New(color.FgRed).FprintfFunc()

	// All prompts read through one buffer
	stdin = bufio.NewReader(os.Stdin)
)

// options are the command line switches that are not part of the config file
type options struct {
	useCache     bool
	refreshCache bool
	watch        bool
}

func main() {
	// Define command line flags
	var (
		configFile    string
		source        string
		outputDir     string
		templatePath  string
		trackName     string
		categoryName  string
		timeout       string
		strict        bool
		watch         bool
		showVersion   bool
		useCache      bool // Force use cache
		refreshCache  bool // Force refresh cache
		showCacheList bool // Show cache list
		clearCache    bool // Clear cache
		showCached    bool // Print cached standings
	)

	flag.StringVar(&configFile, "config", "", "Config file path (YAML)")
	flag.StringVar(&source, "source", "", "Run document path or http(s) URL")
	flag.StringVar(&outputDir, "output", "./output", "Output directory")
	flag.StringVar(&templatePath, "template", "", "Custom template file path")
	flag.StringVar(&trackName, "track", "", "Track shown on index.html (name, code or label)")
	flag.StringVar(&categoryName, "category", "", "Category shown on index.html (P, Any or NoMo)")
	flag.StringVar(&timeout, "timeout", "30s", "Remote document request timeout")
	flag.BoolVar(&strict, "strict", false, "Fail when the run document has consistency findings")
	flag.BoolVar(&watch, "watch", false, "Regenerate whenever the local run document changes")
	flag.BoolVar(&showVersion, "version", false, "Show version info")
	flag.BoolVar(&useCache, "use-cache", false, "Force use cached data")
	flag.BoolVar(&refreshCache, "refresh-cache", false, "Force refresh and update cache")
	flag.BoolVar(&showCacheList, "cache-list", false, "List all cached leaderboards")
	flag.BoolVar(&clearCache, "cache-clear", false, "Clear all cache")
	flag.BoolVar(&showCached, "cache-show", false, "Print the cached standings of -track and -category")
	flag.Parse()

	if showVersion {
		fmt.Printf("uknd_exhibit v%s\n", version)
		os.Exit(0)
	}

	// Load config
	var config models.Config
	configFileToUse := configFile

	// Default to config.yaml if not specified
	if configFileToUse == "" {
		configFileToUse = "config.yaml"
	}

	data, err := os.ReadFile(configFileToUse)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			fatalf("Failed to parse config file: %v", err)
		}
	} else if !os.IsNotExist(err) || configFile != "" {
		fatalf("Failed to read config file: %v", err)
	}

	// Command line args override config file
	if source != "" {
		config.Source = source
	}
	if outputDir != "./output" || config.Output == "" {
		config.Output = outputDir
	}
	if templatePath != "" {
		config.Template = templatePath
	}
	if trackName != "" {
		config.DefaultTrack = trackName
	}
	if categoryName != "" {
		category, err := models.ParseCategory(categoryName)
		if err != nil {
			fatalf("%v", err)
		}
		config.DefaultCategory = category
	}
	if timeout != "30s" || config.API.Timeout == "" {
		config.API.Timeout = timeout
	}
	if strict {
		config.Strict = true
	}

	// Parse timeout duration
	duration, err := time.ParseDuration(config.API.Timeout)
	if err != nil {
		fatalf("Invalid timeout format: %v", err)
	}

	ttl := cache.DefaultTTL
	if config.Cache.TTL != "" {
		ttl, err = time.ParseDuration(config.Cache.TTL)
		if err != nil {
			fatalf("Invalid cache ttl: %v", err)
		}
	}

	// Initialize leaderboard cache
	cacheDir := cache.DefaultCacheDir
	if config.Cache.Dir != "" {
		cacheDir = config.Cache.Dir
	}
	leaderboardCache := cache.NewLeaderboardCache(cacheDir)

	// Handle cache related commands
	if showCacheList {
		if err := listCaches(leaderboardCache); err != nil {
			fatalf("%v", err)
		}
		os.Exit(0)
	}

	if clearCache {
		if err := clearAllCaches(leaderboardCache, cacheDir, ttl); err != nil {
			fatalf("%v", err)
		}
		success("✓ Cleared all cache\n")
		os.Exit(0)
	}

	if showCached {
		if err := showCachedStandings(leaderboardCache, config); err != nil {
			fatalf("%v", err)
		}
		os.Exit(0)
	}

	if config.Source == "" {
		errorf(os.Stderr, "Error: Run document must be specified (use -source flag or config file)\n")
		fmt.Fprintf(os.Stderr, "Use -h to see help\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := api.NewClient(duration)
	if config.Cache.CacheEnabled() {
		documentCache, err := cache.NewDocumentCache(cacheDir, ttl)
		if err != nil {
			warn("Failed to initialize cache, caching disabled: %v", err)
		} else {
			client.SetDocumentCache(documentCache)
			if total, expired := documentCache.Stats(); total > 0 {
				fmt.Printf("Cache: %d documents (%d expired)\n", total, expired)
			}
		}
	} else {
		leaderboardCache = nil
	}

	opts := options{useCache: useCache, refreshCache: refreshCache, watch: watch}

	// Execute generation
	if err := run(ctx, &config, client, leaderboardCache, opts); err != nil {
		fatalf("%v", err)
	}

	success("✓ Pages generated successfully!\n")
	fmt.Printf("Output: %s\n", config.Output)

	if watch {
		if err := watchSource(ctx, &config, client, leaderboardCache, opts); err != nil {
			fatalf("%v", err)
		}
	}
}

func fatalf(format string, args ...any) {
	errorf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func warn(format string, args ...any) {
	warnf(os.Stderr, "Warning: "+format+"\n", args...)
}

func listCaches(lbCache *cache.LeaderboardCache) error {
	files, err := lbCache.List()
	if err != nil {
		return err
	}

	if len(files) == 0 {
		fmt.Println("No cached leaderboards")
		return nil
	}

	fmt.Printf("Found %d cache files:\n", len(files))
	for _, file := range files {
		// Parse filename to get info: kind_identifier_category
		parts := strings.Split(strings.TrimSuffix(file, ".csv"), "_")
		if len(parts) >= 3 {
			id := strings.Join(parts[1:len(parts)-1], " ")
			fmt.Printf("  - %s %s, category %s\n", parts[0], id, parts[len(parts)-1])
		} else {
			fmt.Printf("  - %s\n", file)
		}
	}
	return nil
}

func clearAllCaches(lbCache *cache.LeaderboardCache, dir string, ttl time.Duration) error {
	if err := lbCache.Clear(); err != nil {
		return err
	}
	documentCache, err := cache.NewDocumentCache(dir, ttl)
	if err != nil {
		return err
	}
	return documentCache.Clear()
}

func showCachedStandings(lbCache *cache.LeaderboardCache, config models.Config) error {
	if config.DefaultTrack == "" {
		return fmt.Errorf("-cache-show needs a track (use -track flag or config file)")
	}
	track, err := models.ParseTrack(config.DefaultTrack)
	if err != nil {
		return err
	}
	category := config.DefaultCategory
	if category == "" {
		category = models.CategoryAny
	}

	sel := ranking.Selection{Track: track, Category: category}
	key := &cache.CacheKey{Selection: sel}
	if !lbCache.Exists(key) {
		fmt.Printf("No cached standings for %s\n", sel)
		return nil
	}
	cached, err := lbCache.Load(key)
	if err != nil {
		return err
	}
	if cached == nil {
		fmt.Printf("No cached standings for %s\n", sel)
		return nil
	}

	fmt.Printf("%s (cached %s", sel, cached.CachedAt.Format(time.RFC3339))
	if written, err := lbCache.GetCacheTime(key); err == nil {
		fmt.Printf(", file age %s", time.Since(written).Round(time.Second))
	}
	fmt.Println(")")
	for _, e := range cached.Entries {
		fmt.Printf("  %3d. %-24s %s  %s  %s\n", e.Rank, e.Run.Runner,
			generator.FormatIGT(e.Run.IGTMs), e.Run.Difficulty, e.Run.SubmissionDate)
	}
	return nil
}

func readLine(prompt string) string {
	fmt.Print(prompt)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

func confirm(prompt string) bool {
	for {
		answer := strings.ToLower(readLine(prompt + " (y/n): "))
		if answer == "y" || answer == "yes" {
			return true
		} else if answer == "n" || answer == "no" {
			return false
		}
		fmt.Println("Please enter y or n")
	}
}

// isInteractive checks if running in an interactive terminal environment
func isInteractive() bool {
	// Check if stdin is a terminal
	fileInfo, _ := os.Stdin.Stat()
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// fetch reads the run document, honouring -use-cache and -refresh-cache
func fetch(ctx context.Context, config *models.Config, client *api.Client, opts options) (*api.Document, error) {
	documentCache := client.GetDocumentCache()
	if documentCache != nil && api.IsRemote(config.Source) {
		switch {
		case opts.refreshCache:
			documentCache.Delete(config.Source)
		case opts.useCache:
			if item, ok := documentCache.Stale(config.Source); ok {
				return &api.Document{Source: config.Source, Data: item.Data, FromCache: true}, nil
			}
		default:
			if item, ok := documentCache.Stale(config.Source); ok && isInteractive() && !opts.watch {
				if _, fresh := documentCache.Get(config.Source); !fresh {
					fmt.Printf("Cached copy from %s has expired\n", item.CachedAt.Format(time.RFC3339))
					if !confirm("Download the run document again?") {
						return &api.Document{Source: config.Source, Data: item.Data, FromCache: true, Stale: true}, nil
					}
				}
			}
		}
	}

	fmt.Printf("Reading run document: %s\n", config.Source)
	doc, err := client.Fetch(ctx, config.Source)
	if err != nil {
		return nil, err
	}

	if documentCache != nil && api.IsRemote(config.Source) {
		if err := documentCache.Save(); err != nil {
			warn("Failed to save cache: %v", err)
		}
	}
	return doc, nil
}

// run loads, ranks and renders the run document once
func run(ctx context.Context, config *models.Config, client *api.Client, lbCache *cache.LeaderboardCache, opts options) error {
	doc, err := fetch(ctx, config, client, opts)
	if err != nil {
		return err
	}
	switch {
	case doc.Stale:
		warn("Source unavailable, using expired cached copy")
	case doc.FromCache:
		fmt.Println("✓ Using cached data")
	}

	report, err := gamedata.LoadReport(doc.Data)
	if err != nil {
		return fmt.Errorf("failed to load runs: %w", err)
	}
	fmt.Printf("  Got %d runs\n", len(report.Runs))

	for _, f := range report.Findings {
		warn("%s", f)
	}
	if config.Strict && len(report.Findings) > 0 {
		return fmt.Errorf("%d consistency findings in strict mode", len(report.Findings))
	}

	board, err := ranking.BuildBoard(report.Runs)
	if err != nil {
		return fmt.Errorf("failed to rank runs: %w", err)
	}
	fmt.Printf("  Built %d leaderboards\n", len(board.Selections))

	def, err := defaultSelection(config, report.Runs, board, opts)
	if err != nil {
		return err
	}

	if lbCache != nil {
		saveToCache(lbCache, board)
	}

	fmt.Println("Generating pages...")
	gen, err := generator.NewGenerator(config.Template)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	paths, err := gen.GenerateSite(ctx, config.Output, board, def)
	if err != nil {
		return fmt.Errorf("failed to generate pages: %w", err)
	}
	fmt.Printf("  Wrote %d pages, index shows %s\n", len(paths), def)
	return nil
}

// defaultSelection resolves the leaderboard shown on index.html. Without a
// configured track or category an interactive user is asked; the answer is
// kept in config so watch mode does not ask again.
func defaultSelection(config *models.Config, runs []models.Run, board *ranking.Board, opts options) (ranking.Selection, error) {
	def := ranking.DefaultSelection(runs)
	tracks := ranking.Tracks(runs)

	if config.DefaultTrack == "" && config.DefaultCategory == "" && isInteractive() && !opts.watch {
		track, err := api.SelectTrack(stdin, os.Stdout, tracks, def.Track)
		if err != nil {
			return ranking.Selection{}, fmt.Errorf("failed to select track: %w", err)
		}
		category, err := api.SelectCategory(stdin, os.Stdout, board.Categories(track))
		if err != nil {
			return ranking.Selection{}, fmt.Errorf("failed to select category: %w", err)
		}
		config.DefaultTrack = track.ID()
		config.DefaultCategory = category
		return ranking.Selection{Track: track, Category: category}, nil
	}

	if config.DefaultTrack != "" {
		track, err := api.ResolveTrack(config.DefaultTrack, tracks)
		if err != nil {
			return ranking.Selection{}, fmt.Errorf("failed to resolve default track: %w", err)
		}
		def.Track = track
	}
	if config.DefaultCategory != "" {
		def.Category = config.DefaultCategory
	}
	if _, ok := board.Entries[def]; !ok {
		warn("No %s leaderboard, index shows %s", def, board.Selections[0])
	}
	return def, nil
}

func saveToCache(lbCache *cache.LeaderboardCache, board *ranking.Board) {
	now := time.Now()
	var errs []error
	for _, sel := range board.Selections {
		err := lbCache.Save(&cache.CachedLeaderboard{
			Key:      cache.CacheKey{Selection: sel},
			CachedAt: now,
			Entries:  board.Entries[sel],
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		warn("Failed to save cache: %v", err)
		return
	}
	fmt.Println("✓ Standings cached")
}

// watchSource regenerates the pages whenever the local run document
// changes, until ctx is cancelled. Regenerations never overlap.
func watchSource(ctx context.Context, config *models.Config, client *api.Client, lbCache *cache.LeaderboardCache, opts options) error {
	if api.IsRemote(config.Source) {
		return fmt.Errorf("-watch only works with a local run document")
	}
	target, err := filepath.Abs(config.Source)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", config.Source, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, editors replace files by renaming
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	fmt.Printf("Watching %s (Ctrl+C to stop)\n", config.Source)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("\nStopped watching")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(watchDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			warn("fsnotify: %v", err)
		case <-timer.C:
			fmt.Printf("\n[%s] %s changed\n", time.Now().Format("15:04:05"), config.Source)
			if err := run(ctx, config, client, lbCache, opts); err != nil {
				errorf(os.Stderr, "Error: %v\n", err)
				continue
			}
			success("✓ Pages regenerated\n")
		}
	}
}
