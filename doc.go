// Package modscope provides scoped, nestable isolation of a module
// runtime's global loading state: its module registry, its manifest search
// path and its environment table.
//
// A host process embeds one runtime and can run sections of code "as if"
// in a freshly started runtime with respect to imports, without starting a
// new process.  The engine comes with pluggable service layers such as:
//
//   - registry  – the name → initialized module cache with a protected set
//   - resolver  – the interceptable module resolution chain
//   - manifest  – the location-addressed, hot-swappable definition loader
//   - session   – the save/patch/restore isolation protocol over all three
//
// End-users typically interact via the high-level Service façade exposed
// by the root package:
//
//	srv := modscope.New(modscope.WithSearchPath("file://modules"))
//	rt  := srv.Runtime()
//	sess := rt.NewSession(session.WithEnv(map[string]string{"MODE": "test"}))
//	err := sess.Do(ctx, func(ctx context.Context) error {
//	    plugin, err := rt.Import(ctx, "plugin")
//	    ...
//	    return err
//	})
//
// For more details see the README and individual sub-packages.
package modscope
