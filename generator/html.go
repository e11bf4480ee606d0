package generator

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/soar/uknd_exhibit/models"
	"github.com/soar/uknd_exhibit/ranking"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"golang.org/x/sync/errgroup"
)

//go:embed *.html
var templateFS embed.FS

// IndexPage is the page written for the default selection
const IndexPage = "index.html"

// PageData represents template data structure
type PageData struct {
	Selection   ranking.Selection
	Entries     []ranking.Entry
	Tracks      []Link // Track selector, in board order
	Categories  []Link // Category buttons for the selected track
	GeneratedAt time.Time
}

// Link is a selector option pointing at another leaderboard page
type Link struct {
	Label    string
	Href     string
	Selected bool
}

// Generator represents the HTML generator
type Generator struct {
	templates *template.Template
	m         *minify.M
	now       func() time.Time
	workers   int
}

// NewGenerator creates a new generator
// templatePath: use embedded template if empty, otherwise load external template from specified path
func NewGenerator(templatePath string) (*Generator, error) {
	g := &Generator{
		now:     time.Now,
		workers: runtime.NumCPU(),
	}

	funcMap := template.FuncMap{
		"formatIGT": FormatIGT,
		"relativeDate": func(d models.Date) string {
			return RelativeDate(d, g.now())
		},
		"runnerURL": RunnerURL,
	}

	var tmpl *template.Template
	var err error

	if templatePath != "" {
		// Load template from external file
		content, err := os.ReadFile(templatePath)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("template file not found: %s", templatePath)
			}
			if os.IsPermission(err) {
				return nil, fmt.Errorf("no permission to read template file: %s", templatePath)
			}
			return nil, fmt.Errorf("failed to read template file: %w", err)
		}

		tmpl, err = template.New("leaderboard.html").Funcs(funcMap).Parse(string(content))
		if err != nil {
			return nil, fmt.Errorf("failed to parse external template: %w\nHint: Please check if template syntax is correct", err)
		}
	} else {
		// Use embedded template
		tmpl, err = template.New("leaderboard.html").Funcs(funcMap).ParseFS(templateFS, "leaderboard.html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse embedded template: %w", err)
		}
	}

	// Initialize minifier
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepDefaultAttrVals: true,
		KeepDocumentTags:    true,
		KeepWhitespace:      false,
	})
	m.Add("text/css", &css.Minifier{})
	m.Add("text/javascript", &js.Minifier{
		KeepVarNames: false,
		Version:      2022,
	})

	g.templates = tmpl
	g.m = m
	return g, nil
}

// PageName returns the file name of a leaderboard page
func PageName(sel ranking.Selection) string {
	return sel.Slug() + ".html"
}

// RunnerURL returns the runner's speedrun.com profile
func RunnerURL(runner string) string {
	return "https://www.speedrun.com/users/" + url.PathEscape(runner)
}

// Generate generates static HTML page
func (g *Generator) Generate(outputPath string, data *PageData) error {
	// Ensure output directory exists
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Render template to buffer first
	var buf bytes.Buffer
	if err := g.templates.ExecuteTemplate(&buf, "leaderboard.html", data); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	// Create output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	// Minify HTML and write directly to file
	if g.m != nil {
		if err := g.m.Minify("text/html", file, &buf); err != nil {
			return fmt.Errorf("failed to minify HTML: %w", err)
		}
	} else {
		if _, err := file.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
	}

	return nil
}

// GenerateSite writes one page per leaderboard of the board plus
// index.html for def. Pages are rendered concurrently; the first failure
// cancels the rest. It returns the paths written.
func (g *Generator) GenerateSite(ctx context.Context, outputDir string, board *ranking.Board, def ranking.Selection) ([]string, error) {
	if len(board.Selections) == 0 {
		return nil, fmt.Errorf("no leaderboards to generate")
	}
	if _, ok := board.Entries[def]; !ok {
		def = board.Selections[0]
	}

	type page struct {
		path string
		sel  ranking.Selection
	}
	pages := make([]page, 0, len(board.Selections)+1)
	for _, sel := range board.Selections {
		pages = append(pages, page{filepath.Join(outputDir, PageName(sel)), sel})
	}
	pages = append(pages, page{filepath.Join(outputDir, IndexPage), def})

	now := g.now()
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(g.workers, 1))
	for _, p := range pages {
		p := p
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data := pageData(board, p.sel, now)
			if err := g.Generate(p.path, data); err != nil {
				return fmt.Errorf("%s: %w", p.sel, err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	paths := make([]string, len(pages))
	for i, p := range pages {
		paths[i] = p.path
	}
	return paths, nil
}

// pageData builds the selectors for one page. Track links keep the current
// category when the other track has a board for it.
func pageData(board *ranking.Board, sel ranking.Selection, now time.Time) *PageData {
	data := &PageData{
		Selection:   sel,
		Entries:     board.Entries[sel],
		GeneratedAt: now,
	}

	seen := make(map[models.Track]bool)
	for _, s := range board.Selections {
		if seen[s.Track] {
			continue
		}
		seen[s.Track] = true

		target := ranking.Selection{Track: s.Track, Category: sel.Category}
		if _, ok := board.Entries[target]; !ok {
			target = s
		}
		data.Tracks = append(data.Tracks, Link{
			Label:    s.Track.String(),
			Href:     PageName(target),
			Selected: s.Track == sel.Track,
		})
	}

	for _, c := range board.Categories(sel.Track) {
		data.Categories = append(data.Categories, Link{
			Label:    c.Label(),
			Href:     PageName(ranking.Selection{Track: sel.Track, Category: c}),
			Selected: c == sel.Category,
		})
	}
	return data
}
