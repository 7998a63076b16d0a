// Package testutils holds helpers shared by the package tests: leak checking and synthetic card
// images.
package testutils

import (
	"go.uber.org/goleak"
)

// VerifyTestMain runs the package tests and fails the run if goroutines are still alive
// afterwards. Use it from TestMain in packages that start background workers.
func VerifyTestMain(m goleak.TestingM) {
	goleak.VerifyTestMain(m, goleak.IgnoreCurrent())
}
