package exports

import (
	"github.com/stretchr/testify/assert"
	bstate "github.com/viant/bindly/state"
	"testing"

	"github.com/modscope/modscope/model/exports"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		description string
		input       string
		expected    *exports.Declaration
		shouldError bool
	}{
		{
			description: "env-bound export with type",
			input:       "endpoint[string](env/SERVICE_ENDPOINT)",
			expected: &exports.Declaration{
				Name:     "endpoint",
				DataType: "string",
				Location: &bstate.Location{
					Kind: "env",
					In:   "SERVICE_ENDPOINT",
				},
			},
		},
		{
			description: "import-bound export",
			input:       "token[string](import/auth.token)",
			expected: &exports.Declaration{
				Name:     "token",
				DataType: "string",
				Location: &bstate.Location{
					Kind: "import",
					In:   "auth.token",
				},
			},
		},
		{
			description: "kind only",
			input:       "settings[config.Settings](value)",
			expected: &exports.Declaration{
				Name:     "settings",
				DataType: "config.Settings",
				Location: &bstate.Location{
					Kind: "value",
				},
			},
		},
		{
			description: "empty binding defaults to literal value",
			input:       "retries[int]()",
			expected: &exports.Declaration{
				Name:     "retries",
				DataType: "int",
				Location: &bstate.Location{},
			},
		},
		{
			description: "complex type",
			input:       "hosts[[]config.Host](value)",
			expected: &exports.Declaration{
				Name:     "hosts",
				DataType: "[]config.Host",
				Location: &bstate.Location{
					Kind: "value",
				},
			},
		},
		{
			description: "invalid - missing closing square bracket",
			input:       "endpoint[string(env/KEY)",
			shouldError: true,
		},
		{
			description: "invalid - missing opening parenthesis",
			input:       "endpoint[string]env/KEY)",
			shouldError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			result, err := Parse([]byte(tc.input))

			if tc.shouldError {
				assert.Error(t, err)
			} else {
				assert.EqualValues(t, tc.expected, result)
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsDeclaration(t *testing.T) {
	assert.True(t, IsDeclaration("endpoint[string](env/KEY)"))
	assert.False(t, IsDeclaration("endpoint"))
	assert.False(t, IsDeclaration("[weird]"))
}
