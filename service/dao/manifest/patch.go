package manifest

// Textual hot-swap: applies a unified diff to a cached manifest source and
// re-decodes the result, so hosts can ship manifest edits as patches rather
// than full documents.

import (
	"bytes"
	"context"
	"fmt"

	sgdiff "github.com/sourcegraph/go-diff/diff"

	"github.com/modscope/modscope/internal/udiff"
	"github.com/modscope/modscope/model"
)

// Patch applies patchText (a GNU unified diff against the manifest source
// at location) and stores the re-decoded manifest in the cache. The backing
// store is left untouched; use Refresh to discard the patched copy.
func (s *Service) Patch(ctx context.Context, location string, patchText string) (*model.Manifest, error) {
	fd, err := sgdiff.ParseFileDiff([]byte(patchText))
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	oldData, err := s.Source(ctx, location)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err = udiff.Apply(oldData, fd.Hunks, &buf); err != nil {
		return nil, fmt.Errorf("failed to patch %s: %w", location, err)
	}
	manifest, err := s.DecodeYAML(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("patched manifest at %s is invalid: %w", location, err)
	}
	if manifest.Source == nil {
		manifest.Source = &model.Source{URL: location}
	} else {
		manifest.Source.URL = location
	}

	s.mux.Lock()
	s.cache[location] = &entry{manifest: manifest, source: buf.Bytes()}
	s.mux.Unlock()
	return manifest, nil
}

