// Package session implements scoped, nestable isolation of the runtime's
// module registry, module search path and environment table.
//
// A Session lets a section of code run "as if" in a freshly started
// runtime with respect to imports, without starting a new process:
//
//	runtime := svc.Runtime()
//	sess := runtime.NewSession(session.WithEnv(map[string]string{"MODE": "test"}))
//	err := sess.Do(ctx, func(ctx context.Context) error {
//	    module, err := runtime.Import(ctx, "plugin")
//	    ...
//	    return err
//	})
//
// Modules imported inside an active session are distinct objects from the
// same names imported outside; on exit the registry, environment and
// search path are restored exactly to their pre-entry state. Nested
// sessions stack: each snapshots the state as it stood at its own entry.
package session
