//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package monitor

import "os"

// NewTerminalPoller has no key support on this platform; the repeating loop
// runs until the process is signalled.
func NewTerminalPoller(_ *os.File) (KeyPoller, error) {
	return sleepPoller{}, nil
}
