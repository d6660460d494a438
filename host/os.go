// Package host provides the facilities the VM consumes from its
// surroundings: console streams, the working directory, terminal effects,
// the wall clock and the login name.
package host

import (
	"bufio"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("mmm.host")

const (
	DefaultFlashDuration = 200 * time.Millisecond
	DefaultToneDuration  = 200 * time.Millisecond
)

// OS is the real host: standard streams, the current directory and the
// controlling terminal.
type OS struct {
	in  *bufio.Reader
	out *os.File
	Dir string
	tty bool

	FlashDuration time.Duration
	ToneDuration  time.Duration
}

// NewOS returns a host bound to stdin, stdout and the working directory.
func NewOS() *OS {
	return &OS{
		in:            bufio.NewReader(os.Stdin),
		out:           os.Stdout,
		Dir:           ".",
		tty:           isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		FlashDuration: DefaultFlashDuration,
		ToneDuration:  DefaultToneDuration,
	}
}

// SetInput replaces the input stream, e.g. with a REPL's reader.
func (h *OS) SetInput(r io.Reader) {
	h.in = bufio.NewReader(r)
}

func (h *OS) Write(p []byte) (int, error) {
	return h.out.Write(p)
}

func (h *OS) ReadByte() (byte, error) {
	return h.in.ReadByte()
}

func (h *OS) NowMillis() int64 {
	return time.Now().UnixMilli()
}

func (h *OS) LoginName() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// ListFiles returns the regular files in the working directory, sorted.
func (h *OS) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(h.Dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (h *OS) RemoveFile(name string) error {
	return os.Remove(filepath.Join(h.Dir, name))
}

// Flash turns the terminal foreground bright red for FlashDuration, then
// resets it. Nothing happens when stdout is not a terminal.
func (h *OS) Flash() {
	if !h.tty {
		return
	}
	c := color.New(color.FgHiRed)
	c.SetWriter(h.out)
	time.Sleep(h.FlashDuration)
	c.UnsetWriter(h.out)
}

// Tone rings the terminal bell. Terminals give no control over pitch, so
// hz is only logged.
func (h *OS) Tone(hz int) {
	if !h.tty {
		return
	}
	log.Debugf("tone %d Hz for %s", hz, h.ToneDuration)
	if _, err := h.out.Write([]byte{'\a'}); err != nil {
		return
	}
	time.Sleep(h.ToneDuration)
}
