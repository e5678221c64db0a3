// Package debug holds the checked-build switch for the object runtime.
//
// Checked builds (the default) validate every invariant of the ownership
// model and panic on violation: use of an object that never went through the
// allocation path, retain/release after destruction, over-release, cycle
// registration and similar programmer errors.
//
// Release builds opt out with the objmgr_release build tag:
//
//	go build -tags objmgr_release ./...
//
// In release builds Enabled is false and Assert compiles to nothing, so the
// checks cost nothing and violations are not detected.
package debug
