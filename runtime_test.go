package modscope

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	_ "github.com/viant/afs/mem"

	"github.com/modscope/modscope/model/types"
	"github.com/modscope/modscope/policy"
	"github.com/modscope/modscope/service/approval"
	amem "github.com/modscope/modscope/service/approval/memory"
	"github.com/modscope/modscope/service/builtin/sys"
	"github.com/modscope/modscope/service/dao"
	"github.com/modscope/modscope/service/event"
	"github.com/modscope/modscope/service/messaging/memory"
	"github.com/modscope/modscope/session"
)

func TestRuntime_Import(t *testing.T) {
	ctx := context.Background()
	base := "mem://localhost/rt/import"

	uploadManifest(t, base+"/app.yaml", `
name: app
import:
  cfg: config
exports:
  greeting: hello ${env.USER_NAME}
  mode: ${import.cfg.mode}
  endpoint[string](env/SERVICE_ENDPOINT):
`)
	uploadManifest(t, base+"/config.yaml", `
name: config
exports:
  mode: test
`)

	srv := New(
		WithSearchPath(base),
		WithEnv(map[string]string{
			"USER_NAME":        "dev",
			"SERVICE_ENDPOINT": "http://localhost:8080",
		}))
	rt := srv.Runtime()

	module, err := rt.Import(ctx, "app")
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, 1, module.InitCount)
	assert.EqualValues(t, "hello dev", module.Exports["greeting"])
	assert.EqualValues(t, "test", module.Exports["mode"], "import references resolve against the dependency's exports")
	assert.EqualValues(t, "http://localhost:8080", module.Exports["endpoint"])

	dep := module.Import("cfg")
	if assert.NotNil(t, dep) {
		assert.Same(t, dep, rt.Module("config"), "dependencies land in the registry")
	}

	again, err := rt.Import(ctx, "app")
	assert.Nil(t, err)
	assert.Same(t, module, again, "repeated imports return the cached object")
}

func TestRuntime_ImportErrors(t *testing.T) {
	ctx := context.Background()
	base := "mem://localhost/rt/errors"

	uploadManifest(t, base+"/broken.yaml", `
name: broken
import:
  dep: nosuch
`)
	uploadManifest(t, base+"/badenv.yaml", `
name: badenv
exports:
  value[string](env/UNSET_VARIABLE):
`)

	srv := New(WithSearchPath(base))
	rt := srv.Runtime()

	_, err := rt.Import(ctx, "")
	assert.True(t, errors.Is(err, dao.ErrInvalidName))

	_, err = rt.Import(ctx, "missing")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = rt.Import(ctx, "broken")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "nosuch")
	assert.Nil(t, rt.Module("broken"), "failed loads leave no registry residue")

	_, err = rt.Import(ctx, "badenv")
	if assert.NotNil(t, err, "unset variable in a typed declaration is an error") {
		assert.Contains(t, err.Error(), "UNSET_VARIABLE")
	}
}

func TestRuntime_SessionIsolation(t *testing.T) {
	ctx := context.Background()
	base := "mem://localhost/rt/session"

	uploadManifest(t, base+"/plugin.yaml", `
name: plugin
exports:
  mode: ${env.MODE}
`)

	srv := New(WithSearchPath(base), WithEnv(map[string]string{"MODE": "outer"}))
	rt := srv.Runtime()

	outer, err := rt.Import(ctx, "plugin")
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, "outer", outer.Exports["mode"])

	sess := rt.NewSession(session.WithEnv(map[string]string{"MODE": "isolated"}))
	err = sess.Do(ctx, func(ctx context.Context) error {
		assert.EqualValues(t, 1, rt.SessionDepth())

		inner, err := rt.Import(ctx, "plugin")
		if !assert.Nil(t, err) {
			return err
		}
		assert.NotSame(t, outer, inner)
		assert.EqualValues(t, "isolated", inner.Exports["mode"], "initialization sees the session environment")
		return nil
	})
	assert.Nil(t, err)

	assert.EqualValues(t, 0, rt.SessionDepth())
	assert.Same(t, outer, rt.Module("plugin"))
	value, _ := rt.EnvironLookup("MODE")
	assert.EqualValues(t, "outer", value)
}

func TestRuntime_SessionSearchPath(t *testing.T) {
	ctx := context.Background()
	outer := "mem://localhost/rt/paths/outer"
	inner := "mem://localhost/rt/paths/inner"

	uploadManifest(t, outer+"/tool.yaml", "name: tool\nexports:\n  origin: outer\n")
	uploadManifest(t, inner+"/tool.yaml", "name: tool\nexports:\n  origin: inner\n")

	srv := New(WithSearchPath(outer))
	rt := srv.Runtime()

	sess := rt.NewSession(session.WithPaths(inner))
	err := sess.Do(ctx, func(ctx context.Context) error {
		module, err := rt.Import(ctx, "tool")
		if !assert.Nil(t, err) {
			return err
		}
		assert.EqualValues(t, "inner", module.Exports["origin"], "session paths take precedence")
		return nil
	})
	assert.Nil(t, err)

	module, err := rt.Import(ctx, "tool")
	assert.Nil(t, err)
	assert.EqualValues(t, "outer", module.Exports["origin"])
}

func TestRuntime_SessionReload(t *testing.T) {
	ctx := context.Background()
	base := "mem://localhost/rt/reload"

	uploadManifest(t, base+"/plugin.yaml", "name: plugin\nexports:\n  revision: one\n")

	srv := New(WithSearchPath(base))
	rt := srv.Runtime()

	sess := rt.NewSession()
	err := sess.Do(ctx, func(ctx context.Context) error {
		module, err := rt.Import(ctx, "plugin")
		if !assert.Nil(t, err) {
			return err
		}
		assert.EqualValues(t, "one", module.Exports["revision"])

		// the definition changes at its source location
		uploadManifest(t, base+"/plugin.yaml", "name: plugin\nexports:\n  revision: two\n")

		if err = sess.Reload(ctx, module); !assert.Nil(t, err) {
			return err
		}
		assert.EqualValues(t, 2, module.InitCount, "reload re-runs initialization on the same object")
		assert.EqualValues(t, "two", module.Exports["revision"], "reload picks up the new definition")
		return nil
	})
	assert.Nil(t, err)
	assert.Nil(t, rt.Module("plugin"), "the reloaded module stays session-scoped")
}

func TestRuntime_ManifestHotSwap(t *testing.T) {
	ctx := context.Background()
	base := "mem://localhost/rt/hotswap"
	location := base + "/service.yaml"

	uploadManifest(t, location, "name: service\nexports:\n  port: 8080\n")

	srv := New(WithSearchPath(base))
	rt := srv.Runtime()

	err := rt.UpsertManifest(location, []byte("name: service\nexports:\n  port: 9090\n"))
	assert.Nil(t, err)

	module, err := rt.Import(ctx, "service")
	if !assert.Nil(t, err) {
		return
	}
	assert.EqualValues(t, 9090, module.Exports["port"], "upserted definitions shadow the stored ones")

	// refresh drops the in-memory copy so the stored file wins again
	assert.Nil(t, rt.RefreshManifest(location))
	manifest, err := rt.LoadManifest(ctx, location)
	assert.Nil(t, err)
	assert.EqualValues(t, 8080, manifest.Exports["port"])
}

func TestRuntime_Policy(t *testing.T) {
	base := "mem://localhost/rt/policy"
	uploadManifest(t, base+"/plugin.yaml", "name: plugin\n")

	srv := New(WithSearchPath(base))
	rt := srv.Runtime()

	denyAll := policy.WithPolicy(context.Background(), &policy.Policy{Mode: policy.ModeDeny})
	_, err := rt.Import(denyAll, "plugin")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "denied")

	_, err = rt.Import(denyAll, "sys")
	assert.Nil(t, err, "builtin host modules are never subject to policy")

	asked := ""
	askCtx := policy.WithPolicy(context.Background(), &policy.Policy{
		Mode: policy.ModeAsk,
		Ask: func(ctx context.Context, module string, p *policy.Policy) bool {
			asked = module
			return false
		},
	})
	_, err = rt.Import(askCtx, "plugin")
	assert.NotNil(t, err)
	assert.EqualValues(t, "plugin", asked)

	// ask-mode backed by the approval service
	approvals := amem.New()
	stop := approval.AutoApprove(context.Background(), approvals, 5*time.Millisecond)
	defer stop()
	gated := policy.WithPolicy(context.Background(), &policy.Policy{
		Mode: policy.ModeAsk,
		Ask:  approval.Gate(approvals, time.Second),
	})
	_, err = rt.Import(gated, "plugin")
	assert.Nil(t, err)
}

func TestRuntime_SysIntrospection(t *testing.T) {
	ctx := context.Background()
	srv := New(
		WithSearchPath("mem://localhost/rt/sys"),
		WithEnv(map[string]string{"MODE": "test"}))
	rt := srv.Runtime()

	module, err := rt.Import(ctx, "sys")
	if !assert.Nil(t, err) {
		return
	}
	service, ok := module.Value.(types.Service)
	if !assert.True(t, ok) {
		return
	}

	status, err := service.Method("status")
	assert.Nil(t, err)
	statusOut := &sys.StatusOutput{}
	assert.Nil(t, status(ctx, &sys.StatusInput{IncludeProtected: true}, statusOut))
	assert.Contains(t, statusOut.Modules, EntryModuleName)
	assert.Contains(t, statusOut.Protected, "sys")
	assert.EqualValues(t, []string{"mem://localhost/rt/sys"}, statusOut.SearchPath)
	assert.EqualValues(t, 0, statusOut.SessionDepth)

	env, err := service.Method("env")
	assert.Nil(t, err)
	envOut := &sys.EnvOutput{}
	assert.Nil(t, env(ctx, &sys.EnvInput{Name: "MODE"}, envOut))
	assert.True(t, envOut.Found)
	assert.EqualValues(t, "test", envOut.Value)

	sess := rt.NewSession(session.WithEnv(map[string]string{"MODE": "isolated"}))
	err = sess.Do(ctx, func(ctx context.Context) error {
		inner := &sys.StatusOutput{}
		assert.Nil(t, status(ctx, &sys.StatusInput{}, inner))
		assert.EqualValues(t, 1, inner.SessionDepth)

		lookup := &sys.EnvOutput{}
		assert.Nil(t, env(ctx, &sys.EnvInput{Name: "MODE"}, lookup))
		assert.EqualValues(t, "isolated", lookup.Value, "introspection sees the session overlay")
		return nil
	})
	assert.Nil(t, err)
}

func TestRuntime_Events(t *testing.T) {
	ctx := context.Background()
	base := "mem://localhost/rt/events"
	uploadManifest(t, base+"/plugin.yaml", "name: plugin\n")

	events, err := event.New("memory", event.WithNewMemoryQueueConfig(func(name string) memory.Config {
		return memory.DefaultConfig()
	}))
	if !assert.Nil(t, err) {
		return
	}

	srv := New(WithSearchPath(base), WithEventService(events))
	rt := srv.Runtime()

	_, err = rt.Import(ctx, "plugin")
	assert.Nil(t, err)

	publisher, err := event.PublisherOf[event.ModuleLoaded](events)
	if !assert.Nil(t, err) {
		return
	}
	loaded, err := publisher.Consume(ctx)
	if assert.Nil(t, err) {
		assert.EqualValues(t, "plugin", loaded.Data.Module)
		assert.EqualValues(t, "module.loaded", loaded.Context.EventType)
	}
}
