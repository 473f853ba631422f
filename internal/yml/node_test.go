package yml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func decode(t *testing.T, text string) *Node {
	t.Helper()
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		return (*Node)(node.Content[0])
	}
	return (*Node)(&node)
}

func TestNode_Interface(t *testing.T) {
	root := decode(t, `
name: app
port: 8080
ratio: 0.5
debug: true
nothing:
labels:
  - one
  - two
nested:
  key: value
`)
	value := root.Interface()
	actual, ok := value.(map[string]interface{})
	if !assert.True(t, ok) {
		return
	}
	assert.EqualValues(t, "app", actual["name"])
	assert.EqualValues(t, 8080, actual["port"])
	assert.EqualValues(t, 0.5, actual["ratio"])
	assert.EqualValues(t, true, actual["debug"])
	assert.Nil(t, actual["nothing"], "a value-less key decodes as nil, not an empty string")
	assert.EqualValues(t, []interface{}{"one", "two"}, actual["labels"])
	assert.EqualValues(t, map[string]interface{}{"key": "value"}, actual["nested"])
}

func TestNode_Lookup(t *testing.T) {
	root := decode(t, "name: app\nversion: 0.1.0\n")

	node := root.Lookup("version")
	if assert.NotNil(t, node) {
		assert.EqualValues(t, "0.1.0", node.Value)
	}
	assert.Nil(t, root.Lookup("absent"))
}

func TestNode_Pairs(t *testing.T) {
	root := decode(t, "a: 1\nb: 2\n")

	var keys []string
	err := root.Pairs(func(key string, node *Node) error {
		keys = append(keys, key)
		return nil
	})
	assert.Nil(t, err)
	assert.EqualValues(t, []string{"a", "b"}, keys)
}
