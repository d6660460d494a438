package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/chazu/mmm/host"
	"github.com/chazu/mmm/vm"
)

const (
	promptLine  = "mmm> "
	promptInput = "   < "
)

// lineReader is the part of the line editor the REPL uses.
type lineReader interface {
	Readline() (string, error)
}

// lineInput feeds the VM's input instruction from the REPL's line editor,
// one entered line (plus newline) at a time.
type lineInput struct {
	next func() (string, error)
	buf  []byte
}

func (in *lineInput) Read(p []byte) (int, error) {
	if len(in.buf) == 0 {
		line, err := in.next()
		if err != nil {
			return 0, io.EOF
		}
		in.buf = []byte(line + "\n")
	}
	n := copy(p, in.buf)
	in.buf = in.buf[n:]
	return n, nil
}

// session is the state of one REPL run: the program entered so far and
// the VM executing it.
type session struct {
	vm    *vm.VM
	out   io.Writer
	lines []string
}

// loop reads lines from src until it fails, the VM stops or :quit is
// entered. Each line is appended to the program and executed as soon as
// the program counter reaches it, so jumps back to earlier lines work as
// they do in a file.
func (s *session) loop(src lineReader) {
	for s.vm.Running() {
		line, err := src.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			return
		}
		if s.handle(line) {
			return
		}
	}
}

// handle processes one entered line and reports whether the REPL should
// exit.
func (s *session) handle(line string) bool {
	if cmd := strings.TrimSpace(line); strings.HasPrefix(cmd, ":") {
		return s.command(cmd)
	}
	s.lines = append(s.lines, line)
	s.vm.Execute(s.lines)
	return false
}

// command runs a ':' command and reports whether the REPL should exit.
func (s *session) command(cmd string) bool {
	fields := strings.Fields(cmd)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(s.out, "  :regs           show pc, error code and volatility")
		fmt.Fprintln(s.out, "  :peek ADDR      show the byte at a hex address")
		fmt.Fprintln(s.out, "  :list           show the program entered so far")
		fmt.Fprintln(s.out, "  :reset          clear the program and rewind")
		fmt.Fprintln(s.out, "  :quit           exit")
	case ":regs":
		fmt.Fprintf(s.out, "pc=%d error=%d rate=%g seed=%d\n",
			s.vm.PC(), s.vm.ErrorCode(), s.vm.VolatilityRate(), s.vm.VolatilitySeed())
	case ":peek":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, "usage: :peek ADDR")
			break
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 16)
		if err != nil {
			fmt.Fprintf(s.out, "bad address %q\n", fields[1])
			break
		}
		b := s.vm.Peek(int(addr))
		fmt.Fprintf(s.out, "%#04x: %#02x (volatile=%v)\n", addr, b, s.vm.Volatile(int(addr)))
	case ":list":
		for i, l := range s.lines {
			fmt.Fprintf(s.out, "%4d  %s\n", i, l)
		}
	case ":reset":
		s.lines = nil
		s.vm.Rewind()
	default:
		fmt.Fprintf(s.out, "unknown command %s\n", fields[0])
	}
	return false
}

// runREPL starts a readline session on the terminal and wires the VM's
// input instruction to the same editor.
func runREPL(vmInst *vm.VM, h *host.OS) error {
	cfg := &readline.Config{
		Prompt:          promptLine,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.HistoryFile = filepath.Join(home, ".mmm_history")
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		return err
	}
	defer rl.Close()

	h.SetInput(&lineInput{next: func() (string, error) {
		rl.SetPrompt(promptInput)
		defer rl.SetPrompt(promptLine)
		return rl.Readline()
	}})

	fmt.Println("mmm REPL (':quit' to exit, ':help' for commands)")

	s := &session{vm: vmInst, out: os.Stdout}
	s.loop(rl)
	vmInst.Finish()
	return nil
}
