//go:build !headless

// platform_term.go - terminal/console platform shim: raw-mode stdin as an
// InputSource, terminal size for a console-only Clock/viewport pairing.
//
// Grounded on terminal_host.go's TerminalHost: put the terminal into raw
// mode with x/term so the OS doesn't line-buffer or echo, then read single
// bytes off stdin in a background goroutine, translating CR->LF and DEL->BS
// the same way TerminalHost does for its line-mode MMIO consumer. Here the
// bytes feed a small pressed-key set instead of an emulated UART, since
// this shim's job is "give a scene something to poll for input when there's
// no GPU window," not terminal emulation.

package pixelcore

import (
	"os"
	"sync"
	"syscall"

	"golang.org/x/term"
)

// TermInput is a console InputSource: any byte read from stdin since the
// last Poll marks its button index (the byte value) as pressed for one
// tick. There is no concept of "held" in raw terminal input, so
// ButtonDown and ButtonPressed behave identically here.
type TermInput struct {
	fd       int
	oldState *term.State

	mu      sync.Mutex
	pressed map[int]bool

	stopCh chan struct{}
	done   chan struct{}
}

// NewTermInput puts stdin into raw mode and starts reading it in the
// background. Call Close to restore the terminal.
func NewTermInput() (*TermInput, error) {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	in := &TermInput{
		fd:       fd,
		oldState: oldState,
		pressed:  make(map[int]bool),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	_ = syscall.SetNonblock(fd, true)
	go in.readLoop()
	return in, nil
}

func (in *TermInput) readLoop() {
	defer close(in.done)
	buf := make([]byte, 1)
	for {
		select {
		case <-in.stopCh:
			return
		default:
		}
		n, _ := syscall.Read(in.fd, buf)
		if n <= 0 {
			continue
		}
		b := buf[0]
		if b == '\r' {
			b = '\n'
		}
		if b == 0x7F {
			b = 0x08
		}
		in.mu.Lock()
		in.pressed[int(b)] = true
		in.mu.Unlock()
	}
}

// ButtonDown reports whether the byte value button has been seen since the
// last Poll.
func (in *TermInput) ButtonDown(button int) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.pressed[button]
}

// ButtonPressed is identical to ButtonDown: raw terminal input has no
// distinct held/edge states.
func (in *TermInput) ButtonPressed(button int) bool {
	return in.ButtonDown(button)
}

// MouseAxis is always zero: terminals have no pointer device.
func (in *TermInput) MouseAxis() Vec2 {
	return Vec2{}
}

// Poll clears the pressed set, typically called once per RunFrame so a key
// read in one tick doesn't stay "pressed" forever.
func (in *TermInput) Poll() {
	in.mu.Lock()
	defer in.mu.Unlock()
	for k := range in.pressed {
		delete(in.pressed, k)
	}
}

// Close restores the terminal's original mode and stops the read goroutine.
func (in *TermInput) Close() error {
	close(in.stopCh)
	<-in.done
	return term.Restore(in.fd, in.oldState)
}

// TermSize reports the current terminal size in columns/rows, for a
// console-only viewport.
func TermSize() (cols, rows int, err error) {
	return term.GetSize(int(os.Stdin.Fd()))
}
