//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package monitor

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/tahoe/rnvtop/internal/errors"
)

type terminalPoller struct {
	fd    int
	state *term.State
}

// NewTerminalPoller puts f into raw mode and polls it for key presses. When f
// is not a terminal a sleep-only poller is returned instead.
func NewTerminalPoller(f *os.File) (KeyPoller, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return sleepPoller{}, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errors.New().Wrap(errors.ErrTerminal, err)
	}

	return &terminalPoller{fd: fd, state: state}, nil
}

func (p *terminalPoller) Poll(timeout time.Duration) (byte, bool, error) {
	fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLIN}}

	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err == unix.EINTR {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.New().Wrap(errors.ErrTerminal, err)
	}
	if n == 0 || fds[0].Revents&unix.POLLIN == 0 {
		return 0, false, nil
	}

	var buf [1]byte
	read, err := unix.Read(p.fd, buf[:])
	if err != nil {
		return 0, false, errors.New().Wrap(errors.ErrTerminal, err)
	}
	if read == 0 {
		return 0, false, nil
	}

	return buf[0], true, nil
}

func (*terminalPoller) Raw() bool { return true }

func (p *terminalPoller) Close() error {
	if err := term.Restore(p.fd, p.state); err != nil {
		return errors.New().Wrap(errors.ErrTerminal, err)
	}
	return nil
}
