package manifest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	_ "github.com/viant/afs/mem"
)

func TestService_Patch(t *testing.T) {
	ctx := context.Background()
	const location = "mem://localhost/patch/svc.yaml"

	uploadFixture(t, location, `name: svc
exports:
  rev: v1
  mode: test
`)

	patchText := `--- svc.yaml (original)
+++ svc.yaml (modified)
@@ -1,4 +1,4 @@
 name: svc
 exports:
-  rev: v1
+  rev: v2
   mode: test
`

	srv := New()

	manifest, err := srv.Patch(ctx, location, patchText)
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, "v2", manifest.Exports["rev"])
	assert.EqualValues(t, "test", manifest.Exports["mode"])
	assert.EqualValues(t, location, manifest.Source.URL)

	// the patched copy is what Load now returns
	loaded, err := srv.Load(ctx, location)
	assert.Nil(t, err)
	assert.Same(t, manifest, loaded)

	// refresh discards the patched copy and reloads the original
	srv.Refresh(location)
	loaded, err = srv.Load(ctx, location)
	assert.Nil(t, err)
	assert.EqualValues(t, "v1", loaded.Exports["rev"])
}

func TestService_PatchContextMismatch(t *testing.T) {
	ctx := context.Background()
	const location = "mem://localhost/patch/broken.yaml"

	uploadFixture(t, location, "name: broken\nexports:\n  rev: v9\n")

	patchText := `--- broken.yaml (original)
+++ broken.yaml (modified)
@@ -1,3 +1,3 @@
 name: broken
 exports:
-  rev: v1
+  rev: v2
`

	srv := New()
	_, err := srv.Patch(ctx, location, patchText)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}
