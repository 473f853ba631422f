package modscope

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	_ "github.com/viant/afs/mem"

	"github.com/modscope/modscope/model/types"
)

func uploadManifest(t *testing.T, location, content string) {
	t.Helper()
	fs := afs.New()
	err := fs.Upload(context.Background(), location, 0644, strings.NewReader(content))
	assert.Nil(t, err)
}

func TestNew_Defaults(t *testing.T) {
	srv := New()
	rt := srv.Runtime()
	assert.NotEmpty(t, rt.ID())

	entry := rt.Module(EntryModuleName)
	if assert.NotNil(t, entry, "the entry module is registered at startup") {
		assert.EqualValues(t, EntryModuleName, entry.Name)
	}

	protected := rt.ProtectedNames()
	assert.Contains(t, protected, EntryModuleName)
	for _, name := range []string{"exec", "storage", "secret", "patch", "sys"} {
		assert.Contains(t, protected, name, "builtin host services are protected")
	}
}

func TestNew_Config(t *testing.T) {
	config := &Config{
		SearchPath: []string{"mem://localhost/cfg"},
		Env:        map[string]string{"MODE": "config"},
		Protected:  []string{"extra"},
	}

	srv := New(WithConfig(config))
	rt := srv.Runtime()
	assert.EqualValues(t, []string{"mem://localhost/cfg"}, rt.SearchPath())
	value, ok := rt.EnvironLookup("MODE")
	assert.True(t, ok)
	assert.EqualValues(t, "config", value)
	assert.Contains(t, rt.ProtectedNames(), "extra")

	// explicit options win over config values
	srv = New(WithConfig(config),
		WithSearchPath("mem://localhost/opt"),
		WithEnv(map[string]string{"MODE": "option"}))
	rt = srv.Runtime()
	assert.EqualValues(t, []string{"mem://localhost/opt"}, rt.SearchPath())
	value, _ = rt.EnvironLookup("MODE")
	assert.EqualValues(t, "option", value)
}

func TestConfig_Validate(t *testing.T) {
	type testCase struct {
		description string
		config      *Config
		valid       bool
	}

	cases := []testCase{
		{
			description: "nil config",
			valid:       true,
		},
		{
			description: "zero value",
			config:      &Config{},
			valid:       true,
		},
		{
			description: "populated",
			config:      &Config{SearchPath: []string{"mem://localhost/a"}, Protected: []string{"x"}},
			valid:       true,
		},
		{
			description: "blank search path entry",
			config:      &Config{SearchPath: []string{" "}},
		},
		{
			description: "blank protected name",
			config:      &Config{Protected: []string{""}},
		},
	}

	for _, tc := range cases {
		err := tc.config.Validate()
		if tc.valid {
			assert.Nil(t, err, tc.description)
		} else {
			assert.NotNil(t, err, tc.description)
		}
	}
}

func TestRuntime_BuiltinImport(t *testing.T) {
	ctx := context.Background()
	srv := New()
	rt := srv.Runtime()

	module, err := rt.Import(ctx, "sys")
	if !assert.Nil(t, err) {
		return
	}
	assert.True(t, module.Builtin)
	service, ok := module.Value.(types.Service)
	if assert.True(t, ok, "builtin module value carries the host service") {
		assert.EqualValues(t, "sys", service.Name())
	}
	_, ok = module.Export("status")
	assert.True(t, ok, "builtin exports list the service method signatures")

	again, err := rt.Import(ctx, "sys")
	assert.Nil(t, err)
	assert.Same(t, module, again)
}

func TestService_RegisterHostServices(t *testing.T) {
	srv := New(WithHostServices(&echoService{}))
	rt := srv.Runtime()

	module, err := rt.Import(context.Background(), "echo")
	assert.Nil(t, err)
	assert.True(t, module.Builtin)
	assert.Contains(t, rt.ProtectedNames(), "echo", "constructor-registered services join the protected set")
}

// echoService is a minimal host service used to exercise registration.
type echoService struct{}

func (s *echoService) Name() string { return "echo" }

func (s *echoService) Methods() types.Signatures {
	return types.Signatures{{Name: "echo"}}
}

func (s *echoService) Method(name string) (types.Executable, error) {
	if name != "echo" {
		return nil, types.NewMethodNotFoundError(name)
	}
	return func(ctx context.Context, in, out interface{}) error { return nil }, nil
}
