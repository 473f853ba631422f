// Package approval implements the optional human-in-the-loop layer for
// module loading. With an ask-mode policy every non-builtin load can be
// paused until an explicit approve or reject decision is recorded.
package approval
