package udiff

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	sgdiff "github.com/sourcegraph/go-diff/diff"
)

func TestGenerateApply(t *testing.T) {
	old := []byte("alpha\nbeta\ngamma\n")
	updated := []byte("alpha\nBETA\ngamma\ndelta\n")

	patch, stats, err := Generate(old, updated, "sample.txt", 3)
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, 1, stats.Hunks)
	assert.EqualValues(t, 2, stats.Insertions)
	assert.EqualValues(t, 1, stats.Deletions)

	fd, err := sgdiff.ParseFileDiff([]byte(patch))
	if !assert.Nil(t, err) {
		return
	}
	var buf bytes.Buffer
	err = Apply(old, fd.Hunks, &buf)
	assert.Nil(t, err)
	assert.EqualValues(t, string(updated), buf.String(), "applying the generated patch reproduces the new content")
}

func TestGenerate_NoChange(t *testing.T) {
	_, _, err := Generate([]byte("same\n"), []byte("same\n"), "", 0)
	assert.Same(t, ErrNoChange, err)
}

func TestApply_Mismatch(t *testing.T) {
	old := []byte("alpha\nbeta\n")
	updated := []byte("alpha\nBETA\n")
	patch, _, err := Generate(old, updated, "sample.txt", 1)
	if !assert.Nil(t, err) {
		return
	}
	fd, err := sgdiff.ParseFileDiff([]byte(patch))
	if !assert.Nil(t, err) {
		return
	}
	var buf bytes.Buffer
	err = Apply([]byte("alpha\ndrifted\n"), fd.Hunks, &buf)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}
