// Package policy provides optional declarative rules applied to module
// loading – for example to require an explicit approval for selected
// modules or to block loading altogether. Builtin host modules are never
// subject to policy.
package policy
