// Package gamedata turns a run document into the flat list of runs the
// leaderboards are built from.
//
// A run document is YAML with a single required top-level key, "runs".
// Each entry is a level, layer, act or full-game run; coarser runs carry
// their sub-runs in an "acts", "layers" or "levels" list:
//
//	runs:
//	  - runner: someone
//	    igt_ms: 1234567
//	    category: Any
//	    submission_date: 2023-05-17
//	    difficulty: Violent
//	    patch_release_date: 2023-04-01
//	    proof: https://youtu.be/...
//	    acts:
//	      - track: Act I
//	        ...
//	        layers: [...]
//
// Every node of the tree becomes one run. Anchors, aliases and merge keys
// may be used to share fields between nodes.
package gamedata

import (
	"fmt"

	"github.com/soar/uknd_exhibit/models"
	"gopkg.in/yaml.v3"
)

// Report is the result of loading a document with its consistency findings
type Report struct {
	Runs     []models.Run
	Findings []Finding
}

// Load parses a run document and returns every run it contains.
// Load keeps no state and is safe for concurrent use.
func Load(data []byte) ([]models.Run, error) {
	subs, err := parse(data)
	if err != nil {
		return nil, err
	}
	return flattenAll(subs), nil
}

// LoadReport is Load plus the advisory consistency audit of every coarse run
func LoadReport(data []byte) (*Report, error) {
	subs, err := parse(data)
	if err != nil {
		return nil, err
	}
	return &Report{
		Runs:     flattenAll(subs),
		Findings: audit(subs),
	}, nil
}

func parse(data []byte) ([]*submission, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse run document: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, ErrMissingSection
	}

	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document root is not a mapping", ErrMissingSection)
	}
	fields, err := mappingFields(root, "")
	if err != nil {
		return nil, err
	}

	list, ok := fields["runs"]
	if !ok {
		return nil, ErrMissingSection
	}
	if isMissing(list) {
		return nil, ErrEmpty
	}
	if list.Kind != yaml.SequenceNode {
		return nil, &MalformedRecordError{Path: "runs", Line: list.Line, Reason: "expected a list of runs"}
	}

	subs := make([]*submission, 0, len(list.Content))
	total := 0
	for i, n := range list.Content {
		sub, err := decodeNode(n, fmt.Sprintf("runs[%d]", i))
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
		total += sub.count()
	}
	if total == 0 {
		return nil, ErrEmpty
	}
	return subs, nil
}

func flattenAll(subs []*submission) []models.Run {
	total := 0
	for _, s := range subs {
		total += s.count()
	}
	runs := make([]models.Run, 0, total)
	for _, s := range subs {
		runs = s.flatten(runs)
	}
	return runs
}
