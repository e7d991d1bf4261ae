package monitor

import "time"

// KeyPoller waits up to a bounded timeout for a single key press.
type KeyPoller interface {
	// Poll returns the key read and true, or false when the timeout elapsed
	// without input.
	Poll(timeout time.Duration) (byte, bool, error)
	// Raw reports whether the terminal is in raw mode, in which case output
	// needs explicit carriage returns.
	Raw() bool
	Close() error
}

const (
	keyCtrlC byte = 0x03
)

// IsQuitKey reports whether key ends a repeating session.
func IsQuitKey(key byte) bool {
	switch key {
	case 'q', 'Q', keyCtrlC:
		return true
	default:
		return false
	}
}

// sleepPoller is used when no interactive terminal is available: it only
// waits, so the loop runs until the process is signalled.
type sleepPoller struct{}

// NewSleepPoller returns a KeyPoller that never reports a key.
func NewSleepPoller() KeyPoller {
	return sleepPoller{}
}

func (sleepPoller) Poll(timeout time.Duration) (byte, bool, error) {
	time.Sleep(timeout)
	return 0, false, nil
}

func (sleepPoller) Raw() bool { return false }

func (sleepPoller) Close() error { return nil }
