package gamedata

import (
	"fmt"
	"strings"

	"github.com/soar/uknd_exhibit/models"
)

// FindingKind classifies a consistency finding
type FindingKind string

const (
	FindingTimeMismatch      FindingKind = "time_mismatch"
	FindingCategoryMismatch  FindingKind = "category_mismatch"
	FindingMissingSubrun     FindingKind = "missing_subrun"
	FindingUnexpectedSubrun  FindingKind = "unexpected_subrun"
	FindingInsecureProof     FindingKind = "insecure_proof"
	FindingPartialSubmitDate FindingKind = "partial_submission_date"
)

// Finding is a consistency problem in a run document. Findings are
// advisory: the document still loads.
type Finding struct {
	Kind    FindingKind
	Path    string
	Line    int
	Track   models.Track
	Message string
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", f.Path, f.Line, f.Message)
	}
	return fmt.Sprintf("%s: %s", f.Path, f.Message)
}

// audit walks every submission tree and collects findings, parents before
// children
func audit(subs []*submission) []Finding {
	var findings []Finding
	var walk func(s *submission)
	walk = func(s *submission) {
		findings = append(findings, auditNode(s)...)
		for _, c := range s.children {
			walk(c)
		}
	}
	for _, s := range subs {
		walk(s)
	}
	return findings
}

func auditNode(s *submission) []Finding {
	var findings []Finding
	add := func(kind FindingKind, format string, args ...any) {
		findings = append(findings, Finding{
			Kind:    kind,
			Path:    s.path,
			Line:    s.line,
			Track:   s.run.Track,
			Message: fmt.Sprintf(format, args...),
		})
	}

	if !strings.HasPrefix(s.run.Proof, "https://") {
		add(FindingInsecureProof, "proof %q is not an https:// link", s.run.Proof)
	}
	if !s.run.SubmissionDate.IsComplete() {
		add(FindingPartialSubmitDate, "submission date %q is only partially known", s.run.SubmissionDate)
	}

	constituents := s.run.Track.Constituents()
	if len(constituents) == 0 {
		return findings
	}

	var sum uint64
	present := make(map[models.Track]bool, len(s.children))
	for _, c := range s.children {
		sum += uint64(c.run.IGTMs)
		present[c.run.Track] = true
		if !s.run.Category.Covers(c.run.Category) {
			add(FindingCategoryMismatch, "%s sub-run %s is %s, which does not count towards a %s run",
				c.run.Track, c.path, c.run.Category, s.run.Category)
		}
	}

	expected := make(map[models.Track]bool, len(constituents))
	for _, t := range constituents {
		expected[t] = true
		if !present[t] {
			add(FindingMissingSubrun, "no sub-run for %s", t)
		}
	}
	for _, c := range s.children {
		if !expected[c.run.Track] {
			add(FindingUnexpectedSubrun, "%s is not part of %s", c.run.Track, s.run.Track)
		}
	}

	if len(s.children) > 0 && sum != uint64(s.run.IGTMs) {
		add(FindingTimeMismatch, "time %dms differs from the sum of its sub-runs (%dms)", s.run.IGTMs, sum)
	}
	return findings
}
