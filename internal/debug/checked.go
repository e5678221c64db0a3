//go:build !objmgr_release

package debug

// Enabled reports whether invariant checks are compiled in.
const Enabled = true

// Assert panics with err when cond is false.
func Assert(cond bool, err error) {
	if !cond {
		panic(err)
	}
}
