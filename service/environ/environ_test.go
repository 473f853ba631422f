package environ

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestServiceSwap(t *testing.T) {
	srv := New(Table{"HOME": "/home/test", "SHARED": "outer"})

	overlay := Table{"SHARED": "inner", "ONLY_INNER": "1"}
	original := srv.Swap(overlay)

	value, ok := srv.Lookup("SHARED")
	assert.True(t, ok)
	assert.EqualValues(t, "inner", value)

	_, ok = srv.Lookup("HOME")
	assert.False(t, ok, "outer-only entry must not be visible after swap")

	restored := srv.Swap(original)
	assert.EqualValues(t, overlay, restored, "swap returns the table it replaced")

	value, ok = srv.Lookup("HOME")
	assert.True(t, ok)
	assert.EqualValues(t, "/home/test", value)

	value, ok = srv.Lookup("SHARED")
	assert.True(t, ok)
	assert.EqualValues(t, "outer", value, "value restored to pre-swap state, not deleted")

	_, ok = srv.Lookup("ONLY_INNER")
	assert.False(t, ok)
}

func TestTableSetMissing(t *testing.T) {
	testCases := []struct {
		description string
		base        Table
		inherited   Table
		expected    Table
	}{
		{
			description: "declared values win over inherited",
			base:        Table{"KEY": "declared"},
			inherited:   Table{"KEY": "inherited", "EXTRA": "1"},
			expected:    Table{"KEY": "declared", "EXTRA": "1"},
		},
		{
			description: "empty base inherits everything",
			base:        Table{},
			inherited:   Table{"A": "1"},
			expected:    Table{"A": "1"},
		},
		{
			description: "nil inherited is a no-op",
			base:        Table{"A": "1"},
			inherited:   nil,
			expected:    Table{"A": "1"},
		},
	}

	for _, tc := range testCases {
		base := tc.base.Clone()
		base.SetMissing(tc.inherited)
		assert.EqualValues(t, tc.expected, base, tc.description)
	}
}
