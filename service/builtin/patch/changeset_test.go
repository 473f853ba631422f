package patch_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	_ "github.com/viant/afs/mem"

	"github.com/modscope/modscope/service/builtin/patch"
)

func seedFiles(t *testing.T, files map[string]string) {
	t.Helper()
	fs := afs.New()
	ctx := context.Background()
	for location, content := range files {
		err := fs.Upload(ctx, location, 0644, strings.NewReader(content))
		assert.Nil(t, err)
	}
}

func assertFiles(t *testing.T, description string, expected map[string]string, absent ...string) {
	t.Helper()
	fs := afs.New()
	ctx := context.Background()
	for location, content := range expected {
		data, err := fs.DownloadWithURL(ctx, location)
		if assert.Nil(t, err, "%v: %v", description, location) {
			assert.EqualValues(t, content, string(data), "%v: %v", description, location)
		}
	}
	for _, location := range absent {
		exists, _ := fs.Exists(ctx, location)
		assert.False(t, exists, "%v: %v should not exist", description, location)
	}
}

func TestService_ApplyRollback(t *testing.T) {
	ctx := context.Background()
	base := "mem://localhost/patch/rollback"

	type testCase struct {
		description string
		initial     map[string]string
		edits       func(ctx context.Context, srv *patch.Service) (string, error)
		restored    map[string]string
		absent      []string
	}

	apply := func(srv *patch.Service, patchText string) (string, error) {
		output := &patch.ApplyOutput{}
		err := srv.Apply(context.Background(), &patch.ApplyInput{BaseURL: base, Patch: patchText}, output)
		return output.Changeset, err
	}

	cases := []testCase{
		{
			description: "rollback removes an added file",
			edits: func(ctx context.Context, srv *patch.Service) (string, error) {
				return apply(srv, `--- /dev/null
+++ b/added.txt
@@ -0,0 +1,1 @@
+brand new
`)
			},
			absent: []string{base + "/added.txt"},
		},
		{
			description: "rollback restores updated content",
			initial:     map[string]string{base + "/module.yaml": "name: module\nrevision: one\n"},
			edits: func(ctx context.Context, srv *patch.Service) (string, error) {
				return apply(srv, `--- a/module.yaml
+++ b/module.yaml
@@ -1,2 +1,2 @@
 name: module
-revision: one
+revision: two
`)
			},
			restored: map[string]string{base + "/module.yaml": "name: module\nrevision: one\n"},
		},
		{
			description: "rollback restores a deleted file",
			initial:     map[string]string{base + "/doomed.txt": "keep me\n"},
			edits: func(ctx context.Context, srv *patch.Service) (string, error) {
				return apply(srv, `--- a/doomed.txt
+++ /dev/null
@@ -1,1 +0,0 @@
-keep me
`)
			},
			restored: map[string]string{base + "/doomed.txt": "keep me\n"},
		},
		{
			description: "rollback undoes several edits in reverse order",
			initial:     map[string]string{base + "/config.yaml": "mode: dev\n"},
			edits: func(ctx context.Context, srv *patch.Service) (string, error) {
				id, err := apply(srv, `--- a/config.yaml
+++ b/config.yaml
@@ -1,1 +1,1 @@
-mode: dev
+mode: prod
`)
				if err != nil {
					return id, err
				}
				output := &patch.ApplyOutput{}
				err = srv.Apply(ctx, &patch.ApplyInput{Changeset: id, BaseURL: base, Patch: `--- /dev/null
+++ b/extra.yaml
@@ -0,0 +1,1 @@
+name: extra
`}, output)
				return id, err
			},
			restored: map[string]string{base + "/config.yaml": "mode: dev\n"},
			absent:   []string{base + "/extra.yaml"},
		},
	}

	for _, tc := range cases {
		seedFiles(t, tc.initial)
		srv := patch.New()

		id, err := tc.edits(ctx, srv)
		if !assert.Nil(t, err, tc.description) {
			continue
		}
		output := &patch.ChangesetOutput{}
		err = srv.Rollback(ctx, &patch.ChangesetInput{Changeset: id}, output)
		assert.Nil(t, err, tc.description)
		assert.EqualValues(t, "rolled back", output.Status, tc.description)

		assertFiles(t, tc.description, tc.restored, tc.absent...)
	}
}

func TestService_ApplyCommit(t *testing.T) {
	ctx := context.Background()
	base := "mem://localhost/patch/commit"
	seedFiles(t, map[string]string{base + "/module.yaml": "name: module\nrevision: one\n"})

	srv := patch.New()
	applied := &patch.ApplyOutput{}
	err := srv.Apply(ctx, &patch.ApplyInput{BaseURL: base, Patch: `--- a/module.yaml
+++ b/module.yaml
@@ -1,2 +1,2 @@
 name: module
-revision: one
+revision: two
`}, applied)
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, 1, applied.Applied)

	committed := &patch.ChangesetOutput{}
	err = srv.Commit(ctx, &patch.ChangesetInput{Changeset: applied.Changeset}, committed)
	assert.Nil(t, err)
	assert.EqualValues(t, "committed", committed.Status)

	assertFiles(t, "committed edit persists", map[string]string{
		base + "/module.yaml": "name: module\nrevision: two\n",
	})

	// a released changeset can no longer be addressed
	err = srv.Rollback(ctx, &patch.ChangesetInput{Changeset: applied.Changeset}, &patch.ChangesetOutput{})
	assert.NotNil(t, err)
}

func TestService_ApplyContextMismatch(t *testing.T) {
	ctx := context.Background()
	base := "mem://localhost/patch/mismatch"
	seedFiles(t, map[string]string{base + "/module.yaml": "name: module\nrevision: one\n"})

	srv := patch.New()
	err := srv.Apply(ctx, &patch.ApplyInput{BaseURL: base, Patch: `--- a/module.yaml
+++ b/module.yaml
@@ -1,2 +1,2 @@
 name: module
-revision: nine
+revision: two
`}, &patch.ApplyOutput{})
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestService_Diff(t *testing.T) {
	ctx := context.Background()
	srv := patch.New()

	output := &patch.DiffOutput{}
	err := srv.Diff(ctx, &patch.DiffInput{
		Old:  "name: module\nrevision: one\n",
		New:  "name: module\nrevision: two\n",
		Path: "module.yaml",
	}, output)
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, 1, output.Hunks)
	assert.EqualValues(t, 1, output.Insertions)
	assert.EqualValues(t, 1, output.Deletions)
	assert.Contains(t, output.Patch, "a/module.yaml")

	same := &patch.DiffOutput{}
	err = srv.Diff(ctx, &patch.DiffInput{Old: "x\n", New: "x\n"}, same)
	assert.Nil(t, err)
	assert.True(t, same.NoChange)
}
