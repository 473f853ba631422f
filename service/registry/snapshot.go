package registry

// Snapshot rendering and diff helpers used to verify restoration.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/modscope/modscope/model"
)

// Snapshot is a copy of the registry mapping taken at a point in time. It
// backs both restoration on session exit and the pre-reload registry view.
type Snapshot map[string]*model.Module

// Lookup returns the snapshot entry for name or nil.
func (s Snapshot) Lookup(name string) *model.Module {
	return s[name]
}

// Names returns the sorted names held by the snapshot.
func (s Snapshot) Names() []string {
	ret := make([]string, 0, len(s))
	for name := range s {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// DiffStats captures basic statistics about a unified-diff output.
type DiffStats struct {
	Added   int // number of lines starting with '+' (excluding +++)
	Removed int // number of lines starting with '-' (excluding ---)
}

// render produces a stable line-per-entry textual form of the snapshot.
// Entries include the module pointer so two distinct module objects with
// the same name render differently.
func (s Snapshot) render() []string {
	names := s.Names()
	lines := make([]string, 0, len(names))
	for _, name := range names {
		module := s[name]
		source := ""
		if module.Source != nil {
			source = module.Source.URL
		}
		lines = append(lines, fmt.Sprintf("%s init=%d source=%s object=%p\n", name, module.InitCount, source, module))
	}
	return lines
}

// Diff produces a GNU unified diff between this snapshot and other. An
// empty diff string means the two registry states are identical, entry for
// entry and object for object – the restoration property sessions must
// uphold.
func (s Snapshot) Diff(other Snapshot, label string) (string, DiffStats, error) {
	a := s.render()
	b := other.render()
	if strings.Join(a, "") == strings.Join(b, "") {
		return "", DiffStats{}, nil
	}

	ud := difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: label + " (before)",
		ToFile:   label + " (after)",
		Context:  3,
	}
	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", DiffStats{}, err
	}

	// compute stats
	var stats DiffStats
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			stats.Added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			stats.Removed++
		}
	}
	return patch, stats, nil
}
