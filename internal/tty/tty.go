// Package tty provides terminal emulation.
package tty

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/rvhart/hart/internal/hart"
)

// Console is a serial console, adapted using Unix terminal I/O[^1], for
// interactively driving a hart's external signal ports: keys pressed on the
// console are mapped to Reset/NMI/HaltReq calls, instead of the
// byte-oriented keyboard device this package originally adapted a terminal
// for.
//
// [1]: See: tty(4), termios(4).
type Console struct {
	in    *os.File
	out   *term.Terminal
	fd    int
	state *term.State

	keyCh chan byte
}

// ErrNoTTY is returned if standard input is not a terminal. In this case, asynchronous I/O is
// not supported by the console.
var ErrNoTTY error = errors.New("console: not a TTY")

// getTermiosIoctl and setTermiosIoctl are the termios get/set ioctl request
// numbers for the current platform.
const (
	getTermiosIoctl = unix.TCGETS
	setTermiosIoctl = unix.TCSETS
)

// KeyBindings maps a single input byte to the hart port it triggers. The
// zero value of each field is a no-op binding.
type KeyBindings struct {
	HaltReq byte // e.g. 'h': assert haltreq
	Resume  byte // e.g. 'c': clear haltreq
	NMI     byte // e.g. 'n': assert nmi
	Reset   byte // e.g. 'r': assert then release reset
	Quit    byte // e.g. 'q': cancel the context
}

// DefaultKeyBindings returns the conventional key bindings for the ports
// subcommand.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{HaltReq: 'h', Resume: 'c', NMI: 'n', Reset: 'r', Quit: 'q'}
}

// ConsoleContext creates a Console wired to h's external signal ports using
// the standard streams. Calling the returned cancel function restores
// terminal state and stops the reader goroutine.
func ConsoleContext(parent context.Context, h *hart.Hart, bindings KeyBindings) (
	context.Context, *Console, context.CancelFunc,
) {
	ctx, cause := context.WithCancelCause(parent)

	console, err := NewConsole(os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		cause(err)

		return ctx, console, func() { cause(err) }
	}

	go console.readTerminal(ctx, cause)
	go console.drivePorts(ctx, cause, h, bindings)

	return ctx, console, console.Restore
}

// NewConsole creates a Console using the provided streams. If the input stream is not a terminal,
// ErrNoTTY is returned. Callers are responsible for calling [Restore] to return the terminal to its
// initial state.
func NewConsole(sin, sout, serr *os.File) (*Console, error) {
	fd := int(sin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	cons := Console{
		fd:    fd,
		in:    sin,
		out:   term.NewTerminal(sin, ""),
		state: saved,
		keyCh: make(chan byte, 1),
	}

	err = cons.setTerminalParams(1, 0)
	if err != nil {
		return nil, err
	}

	return &cons, nil
}

// Press injects a key press, as if typed at the console. Exposed for tests
// that drive the console without a real terminal attached.
func (c Console) Press(key byte) {
	c.keyCh <- key
}

// Writer returns an io.Writer that writes to the terminal.
func (c Console) Writer() io.Writer {
	return c.out
}

// Restore returns the terminal to its initial state and cancels in-progress reads.
func (c *Console) Restore() {
	_ = os.Stdin.SetReadDeadline(time.Now())
	_ = term.Restore(c.fd, c.state)
}

func (c *Console) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(c.fd, true)

	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	err = unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO)
	if err != nil {
		return err
	}

	_ = os.Stdin.SetReadDeadline(time.Time{})

	return nil
}

// readTerminal reads bytes from the terminal and writes them to the key channel until the context
// is cancelled. If reading from the terminal fails, the cancel is called.
func (c Console) readTerminal(ctx context.Context, cancel context.CancelCauseFunc) {
	buf := bufio.NewReader(c.in)

	// Make terminal input block on reads.
	_ = syscall.SetNonblock(c.fd, false)

	for { // ever and ever
		select {
		case <-ctx.Done():
			return
		default:
		}

		b, err := buf.ReadByte()
		if err != nil {
			cancel(err) // TODO: Is it right to cancel the context on errors?
			return
		}

		select {
		case <-ctx.Done():
			return
		case c.keyCh <- b:
		}
	}
}

// drivePorts takes keys from the key channel and asserts the hart port each
// is bound to. The function blocks until the context is cancelled, and
// cancels it itself when the Quit key is pressed.
func (c Console) drivePorts(ctx context.Context, cancel context.CancelCauseFunc, h *hart.Hart, bindings KeyBindings) {
	for {
		select {
		case <-ctx.Done():
			return
		case key := <-c.keyCh:
			switch key {
			case bindings.HaltReq:
				h.HaltReq()
			case bindings.Resume:
				h.ClearHaltReq()
			case bindings.NMI:
				h.NMI()
			case bindings.Reset:
				h.Reset()
				h.ReleaseReset()
			case bindings.Quit:
				cancel(nil)
				return
			}
		}
	}
}
