package gamedata

import (
	"fmt"
	"strings"

	"github.com/soar/uknd_exhibit/models"
	"gopkg.in/yaml.v3"
)

// submission is one decoded node of a run document: its own run plus the
// decoded sub-runs at the next finer tier.
type submission struct {
	path     string
	line     int
	run      models.Run
	children []*submission
}

// flatten appends the runs of the subtree to dst, children first in
// document order, then the node itself
func (s *submission) flatten(dst []models.Run) []models.Run {
	for _, c := range s.children {
		dst = c.flatten(dst)
	}
	return append(dst, s.run)
}

// count returns the number of runs in the subtree
func (s *submission) count() int {
	n := 1
	for _, c := range s.children {
		n += c.count()
	}
	return n
}

// shape is one of the four submission layouts, identified by the key of
// its sub-run list
type shape struct {
	kind     models.TrackKind
	children string
}

// Trial order: richest shape first. Changing it reclassifies ambiguous nodes.
var shapes = []shape{
	{kind: models.TrackFullgame, children: "acts"},
	{kind: models.TrackAct, children: "layers"},
	{kind: models.TrackLayer, children: "levels"},
	{kind: models.TrackLevel},
}

// childKind is the tier a shape's children must decode to
var childKind = map[models.TrackKind]models.TrackKind{
	models.TrackFullgame: models.TrackAct,
	models.TrackAct:      models.TrackLayer,
	models.TrackLayer:    models.TrackLevel,
}

// decodeNode decodes a submission node of any shape
func decodeNode(n *yaml.Node, path string) (*submission, error) {
	n = resolve(n)
	fields, err := mappingFields(n, path)
	if err != nil {
		return nil, err
	}

	var reported error
	for _, sh := range shapes {
		sub, err := decodeShape(sh, n, fields, path)
		if err == nil {
			return sub, nil
		}
		// Report the failure of the richest shape the node claims to be
		if reported == nil && (sh.children == "" || fields[sh.children] != nil) {
			reported = err
		}
	}
	return nil, reported
}

// decodeAs decodes a node that must have the given shape, as required for
// children of a coarser node
func decodeAs(kind models.TrackKind, n *yaml.Node, path string) (*submission, error) {
	n = resolve(n)
	fields, err := mappingFields(n, path)
	if err != nil {
		return nil, err
	}
	for _, sh := range shapes {
		if sh.kind == kind {
			return decodeShape(sh, n, fields, path)
		}
	}
	return nil, fmt.Errorf("no shape for %s", kind)
}

func decodeShape(sh shape, n *yaml.Node, fields map[string]*yaml.Node, path string) (*submission, error) {
	fail := func(field, value, reason string) error {
		return &MalformedRecordError{Path: path, Line: n.Line, Field: field, Value: value, Reason: reason}
	}

	// A node carrying the list of a richer shape failed as that shape;
	// accepting it here would drop the list silently.
	for _, richer := range shapes {
		if richer.kind <= sh.kind {
			break
		}
		if fields[richer.children] != nil {
			return nil, fail(richer.children, "", fmt.Sprintf("%s runs have no %q list", sh.kind, richer.children))
		}
	}

	track, err := decodeTrack(sh.kind, fields, fail)
	if err != nil {
		return nil, err
	}

	var childNodes []*yaml.Node
	if sh.children != "" {
		list := fields[sh.children]
		if list == nil {
			return nil, fail(sh.children, "", "required field is missing")
		}
		if list.Kind != yaml.SequenceNode {
			return nil, fail(sh.children, "", "expected a list")
		}
		childNodes = list.Content
	}

	run, err := decodeRunFields(fields, fail)
	if err != nil {
		return nil, err
	}
	run.Track = track

	sub := &submission{path: path, line: n.Line, run: run}
	for i, c := range childNodes {
		child, err := decodeAs(childKind[sh.kind], c, fmt.Sprintf("%s.%s[%d]", path, sh.children, i))
		if err != nil {
			return nil, err
		}
		sub.children = append(sub.children, child)
	}
	return sub, nil
}

func decodeTrack(kind models.TrackKind, fields map[string]*yaml.Node, fail func(field, value, reason string) error) (models.Track, error) {
	if kind == models.TrackFullgame {
		return models.FullgameTrack(), nil
	}
	name, err := scalarField(fields, "track", fail)
	if err != nil {
		return models.Track{}, err
	}

	switch kind {
	case models.TrackAct:
		act, err := models.ParseAct(name)
		if err != nil {
			return models.Track{}, fail("track", name, "not an act")
		}
		return models.ActTrack(act), nil
	case models.TrackLayer:
		layer, err := models.ParseLayer(name)
		if err != nil {
			return models.Track{}, fail("track", name, "not a layer")
		}
		return models.LayerTrack(layer), nil
	}

	// Custom level names may not shadow coarser tracks, otherwise a layer
	// run missing its levels list would silently become a custom level.
	t, err := models.ParseTrack(name)
	if err != nil {
		return models.Track{}, fail("track", name, err.Error())
	}
	if t.Kind != models.TrackLevel {
		return models.Track{}, fail("track", name, fmt.Sprintf("names a %s; %s runs need a %q list", t.Kind, t.Kind, childListKey(t.Kind)))
	}
	return t, nil
}

func childListKey(kind models.TrackKind) string {
	for _, sh := range shapes {
		if sh.kind == kind {
			return sh.children
		}
	}
	return ""
}

func decodeRunFields(fields map[string]*yaml.Node, fail func(field, value, reason string) error) (models.Run, error) {
	var run models.Run

	runner, err := scalarField(fields, "runner", fail)
	if err != nil {
		return run, err
	}
	if strings.TrimSpace(runner) == "" {
		return run, fail("runner", "", "must not be empty")
	}
	run.Runner = runner

	igt := fields["igt_ms"]
	if isMissing(igt) {
		return run, fail("igt_ms", "", "required field is missing")
	}
	if err := igt.Decode(&run.IGTMs); err != nil {
		return run, fail("igt_ms", igt.Value, "expected an unsigned 32-bit millisecond count")
	}

	category, err := scalarField(fields, "category", fail)
	if err != nil {
		return run, err
	}
	if run.Category, err = models.ParseCategory(category); err != nil {
		return run, fail("category", category, "expected P, Any or NoMo")
	}

	date, err := scalarField(fields, "submission_date", fail)
	if err != nil {
		return run, err
	}
	if run.SubmissionDate, err = models.ParseDate(date); err != nil {
		return run, fail("submission_date", date, "expected YYYY, YYYY-MM or YYYY-MM-DD")
	}

	difficulty, err := scalarField(fields, "difficulty", fail)
	if err != nil {
		return run, err
	}
	if run.Difficulty, err = models.ParseDifficulty(difficulty); err != nil {
		return run, fail("difficulty", difficulty, "unknown difficulty")
	}

	patch, err := scalarField(fields, "patch_release_date", fail)
	if err != nil {
		return run, err
	}
	run.PatchReleaseDate = models.Patch(patch)

	if run.Proof, err = scalarField(fields, "proof", fail); err != nil {
		return run, err
	}
	return run, nil
}

func scalarField(fields map[string]*yaml.Node, name string, fail func(field, value, reason string) error) (string, error) {
	n := fields[name]
	if isMissing(n) {
		return "", fail(name, "", "required field is missing")
	}
	if n.Kind != yaml.ScalarNode {
		return "", fail(name, "", "expected a single value")
	}
	return n.Value, nil
}

func isMissing(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null")
}

// resolve follows aliases to their anchored node
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// mappingFields indexes a mapping node by key. Merge keys ("<<") are
// honoured so shared run fields can be written once with an anchor; keys
// written on the node itself win over merged ones.
func mappingFields(n *yaml.Node, path string) (map[string]*yaml.Node, error) {
	if n == nil || n.Kind != yaml.MappingNode {
		line := 0
		if n != nil {
			line = n.Line
		}
		return nil, &MalformedRecordError{Path: path, Line: line, Reason: "expected a mapping of run fields"}
	}

	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	var merged []*yaml.Node
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], resolve(n.Content[i+1])
		if key.Value == "<<" && key.ShortTag() == "!!merge" {
			if value.Kind == yaml.SequenceNode {
				for _, m := range value.Content {
					merged = append(merged, resolve(m))
				}
			} else {
				merged = append(merged, value)
			}
			continue
		}
		fields[key.Value] = value
	}

	for _, m := range merged {
		base, err := mappingFields(m, path)
		if err != nil {
			return nil, err
		}
		for k, v := range base {
			if _, ok := fields[k]; !ok {
				fields[k] = v
			}
		}
	}
	return fields, nil
}
