//go:build windows

package tty

// watchResize is a no-op; the runtime still polls the size on idle ticks.
func watchResize(func()) (stop func()) { return func() {} }
