package patch

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	sgdiff "github.com/sourcegraph/go-diff/diff"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/modscope/modscope/internal/udiff"
)

type action string

const (
	actionAdd    action = "add"
	actionUpdate action = "update"
	actionDelete action = "delete"
	actionMove   action = "move"
)

// revision records a single applied edit together with the content needed
// to undo it. Every mutating call gets its own backup so the same asset can
// be edited repeatedly within one changeset without losing the original.
type revision struct {
	action  action
	url     string
	destURL string // move destination, otherwise ""
	backup  []byte
}

// Changeset applies edits to stored module definitions through an afs
// service and keeps per-edit backups in memory so Rollback restores the
// pre-changeset content in reverse order.
type Changeset struct {
	id        string
	fs        afs.Service
	mu        sync.Mutex
	revisions []revision
	committed bool
}

func newChangeset(id string, fs afs.Service) *Changeset {
	return &Changeset{id: id, fs: fs}
}

// ID returns the changeset identifier.
func (c *Changeset) ID() string {
	return c.id
}

func (c *Changeset) assertOpen() error {
	if c.committed {
		return fmt.Errorf("changeset %v already committed", c.id)
	}
	return nil
}

// Add creates a new asset; it fails when the location is already taken.
func (c *Changeset) Add(ctx context.Context, URL string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.assertOpen(); err != nil {
		return err
	}
	if exists, _ := c.fs.Exists(ctx, URL); exists {
		return fmt.Errorf("add: %v already exists", URL)
	}
	if err := c.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return err
	}
	c.revisions = append(c.revisions, revision{action: actionAdd, url: URL})
	return nil
}

// Update replaces an existing asset's content.
func (c *Changeset) Update(ctx context.Context, URL string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.assertOpen(); err != nil {
		return err
	}
	backup, err := c.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if err = c.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return err
	}
	c.revisions = append(c.revisions, revision{action: actionUpdate, url: URL, backup: backup})
	return nil
}

// Delete removes an asset.
func (c *Changeset) Delete(ctx context.Context, URL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.assertOpen(); err != nil {
		return err
	}
	backup, err := c.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if err = c.fs.Delete(ctx, URL); err != nil {
		return err
	}
	c.revisions = append(c.revisions, revision{action: actionDelete, url: URL, backup: backup})
	return nil
}

// Move renames an asset.
func (c *Changeset) Move(ctx context.Context, srcURL, destURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.assertOpen(); err != nil {
		return err
	}
	if exists, _ := c.fs.Exists(ctx, srcURL); !exists {
		return fmt.Errorf("move: %v does not exist", srcURL)
	}
	if err := c.fs.Move(ctx, srcURL, destURL); err != nil {
		return err
	}
	c.revisions = append(c.revisions, revision{action: actionMove, url: srcURL, destURL: destURL})
	return nil
}

// ApplyPatch applies a multi-file unified diff; file names are resolved
// against baseURL unless they are absolute URLs already. Returns the number
// of files touched.
func (c *Changeset) ApplyPatch(ctx context.Context, baseURL, patchText string) (int, error) {
	files, err := sgdiff.ParseMultiFileDiff([]byte(patchText))
	if err != nil {
		return 0, fmt.Errorf("parse patch: %w", err)
	}
	applied := 0
	for _, fd := range files {
		orig := resolveURL(baseURL, strings.TrimPrefix(fd.OrigName, "a/"))
		newer := resolveURL(baseURL, strings.TrimPrefix(fd.NewName, "b/"))

		switch {
		case fd.OrigName == "/dev/null": // creation
			var buf bytes.Buffer
			if err = udiff.Apply(nil, fd.Hunks, &buf); err != nil {
				return applied, err
			}
			if err = c.Add(ctx, newer, buf.Bytes()); err != nil {
				return applied, err
			}
		case fd.NewName == "/dev/null": // removal
			if err = c.Delete(ctx, orig); err != nil {
				return applied, err
			}
		case orig != newer && len(fd.Hunks) == 0: // pure rename
			if err = c.Move(ctx, orig, newer); err != nil {
				return applied, err
			}
		default:
			oldData, err := c.fs.DownloadWithURL(ctx, orig)
			if err != nil {
				return applied, err
			}
			var buf bytes.Buffer
			if err = udiff.Apply(oldData, fd.Hunks, &buf); err != nil {
				return applied, err
			}
			target := orig
			if orig != newer {
				if err = c.Move(ctx, orig, newer); err != nil {
					return applied, err
				}
				target = newer
			}
			if err = c.Update(ctx, target, buf.Bytes()); err != nil {
				return applied, err
			}
		}
		applied++
	}
	return applied, nil
}

// Rollback undoes every recorded edit in reverse order.
func (c *Changeset) Rollback(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.assertOpen(); err != nil {
		return err
	}
	for i := len(c.revisions) - 1; i >= 0; i-- {
		r := c.revisions[i]
		switch r.action {
		case actionAdd:
			if err := c.fs.Delete(ctx, r.url); err != nil {
				if exists, _ := c.fs.Exists(ctx, r.url); exists {
					return fmt.Errorf("rollback add: %w", err)
				}
			}
		case actionUpdate, actionDelete:
			if err := c.fs.Upload(ctx, r.url, file.DefaultFileOsMode, bytes.NewReader(r.backup)); err != nil {
				return fmt.Errorf("rollback %v: %w", r.action, err)
			}
		case actionMove:
			if err := c.fs.Move(ctx, r.destURL, r.url); err != nil {
				return fmt.Errorf("rollback move: %w", err)
			}
		}
	}
	c.revisions = nil
	return nil
}

// Commit discards the rollback information; the changeset accepts no
// further edits afterwards.
func (c *Changeset) Commit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.committed = true
	c.revisions = nil
}

func resolveURL(baseURL, name string) string {
	if baseURL == "" || strings.Contains(name, "://") || name == "/dev/null" {
		return name
	}
	return url.Join(baseURL, name)
}
