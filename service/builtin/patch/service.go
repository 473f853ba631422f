// Package patch exposes transactional edits of stored module definitions
// as a builtin host service: unified-diff application, diff generation and
// changeset commit/rollback.
package patch

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/afs"

	"github.com/modscope/modscope/internal/idgen"
	"github.com/modscope/modscope/internal/udiff"
)

// Service keeps open changesets keyed by id; a changeset groups edits so
// they can be rolled back as one unit when a hot-swap goes wrong.
type Service struct {
	fs         afs.Service
	mu         sync.Mutex
	changesets map[string]*Changeset
}

// New creates a patch service backed by the abstract file system.
func New() *Service {
	return &Service{
		fs:         afs.New(),
		changesets: make(map[string]*Changeset),
	}
}

// changeset returns the changeset registered under id, creating a fresh one
// when id is empty.
func (s *Service) changeset(id string) (*Changeset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		ret := newChangeset(idgen.New(), s.fs)
		s.changesets[ret.ID()] = ret
		return ret, nil
	}
	ret, ok := s.changesets[id]
	if !ok {
		return nil, fmt.Errorf("unknown changeset %v", id)
	}
	return ret, nil
}

func (s *Service) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.changesets, id)
}

// Apply applies input.Patch within a changeset; when input.Changeset is
// empty a new changeset is opened and its id returned in the output.
func (s *Service) Apply(ctx context.Context, input *ApplyInput, output *ApplyOutput) error {
	changeset, err := s.changeset(input.Changeset)
	if err != nil {
		return err
	}
	output.Changeset = changeset.ID()
	output.Applied, err = changeset.ApplyPatch(ctx, input.BaseURL, input.Patch)
	return err
}

// Diff generates a unified diff between two text blobs.
func (s *Service) Diff(ctx context.Context, input *DiffInput, output *DiffOutput) error {
	patch, stats, err := udiff.Generate([]byte(input.Old), []byte(input.New), input.Path, input.Context)
	if err == udiff.ErrNoChange {
		output.NoChange = true
		return nil
	}
	if err != nil {
		return err
	}
	output.Patch = patch
	output.Hunks = stats.Hunks
	output.Insertions = stats.Insertions
	output.Deletions = stats.Deletions
	return nil
}

// Commit makes the changeset's edits final and releases it.
func (s *Service) Commit(ctx context.Context, input *ChangesetInput, output *ChangesetOutput) error {
	changeset, err := s.changeset(input.Changeset)
	if err != nil {
		return err
	}
	changeset.Commit()
	s.release(changeset.ID())
	output.Changeset = changeset.ID()
	output.Status = "committed"
	return nil
}

// Rollback undoes the changeset's edits and releases it.
func (s *Service) Rollback(ctx context.Context, input *ChangesetInput, output *ChangesetOutput) error {
	changeset, err := s.changeset(input.Changeset)
	if err != nil {
		return err
	}
	if err = changeset.Rollback(ctx); err != nil {
		return err
	}
	s.release(changeset.ID())
	output.Changeset = changeset.ID()
	output.Status = "rolled back"
	return nil
}
