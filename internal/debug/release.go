//go:build objmgr_release

package debug

// Enabled reports whether invariant checks are compiled in.
const Enabled = false

// Assert is a no-op in release builds.
func Assert(bool, error) {}
