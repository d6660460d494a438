package vm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Run loop
// ---------------------------------------------------------------------------

// Run executes source line by line starting at the current program
// counter, then calls Finish. If the reverse-code flag is set every line
// is reversed first and the flag is cleared.
func (vm *VM) Run(source string) {
	lines := strings.Split(source, "\n")
	if vm.reverseCode {
		for i, line := range lines {
			lines[i] = reverseRunes(line)
		}
		vm.reverseCode = false
	}

	vm.Execute(lines)
	vm.Finish()
}

// Finish prints the completion notice and any final error code.
func (vm *VM) Finish() {
	fmt.Fprint(vm.host, "\nProgram finished.\n")
	if vm.errorCode != CodeNone {
		fmt.Fprintf(vm.host, "Final Error Code: %d\n", vm.errorCode)
	}
}

// Execute steps through lines while the VM is running and the program
// counter addresses one of them.
func (vm *VM) Execute(lines []string) {
	for vm.running && vm.pc >= 0 && vm.pc < len(lines) {
		vm.Step(lines[vm.pc])
	}
}

// Step executes one line as the instruction at the current program
// counter and advances it.
func (vm *VM) Step(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		vm.pc++
		return
	}

	// ? tests the register as the previous instruction left it.
	previous := vm.errorCode
	vm.errorCode = CodeNone

	if log.AllowLevel(commonlog.Debug) {
		log.Debugf("pc=%d %s", vm.pc, strings.Join(fields, " "))
	}

	jumped, err := vm.exec(fields[0], fields[1:], previous)
	if err != nil {
		vm.errorCode = CodeMalformed
		var ie *InstructionError
		if errors.As(err, &ie) && ie.Fatal {
			fmt.Fprintf(vm.host, "Error on line %d: %s\n", ie.Line, ie.Reason)
			vm.running = false
		}
	}
	if !jumped {
		vm.pc++
	}
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

// exec runs a single decoded instruction. It reports whether the program
// counter was set directly.
func (vm *VM) exec(op string, args []string, previous int) (bool, error) {
	fatal := func(err error) (bool, error) {
		return false, &InstructionError{Line: vm.pc, Op: op, Reason: err.Error(), Fatal: true}
	}

	switch op {
	case OpAdd, OpMul:
		name := "ADD"
		if op == OpMul {
			name = "MUL"
		}
		if err := arity(args, 3, name); err != nil {
			return fatal(err)
		}
		addr, err := parseHexArgs(args)
		if err != nil {
			return fatal(err)
		}
		a, b := int(vm.GetValue(addr[0])), int(vm.GetValue(addr[1]))
		if op == OpAdd {
			vm.SetValue(addr[2], a+b)
		} else {
			vm.SetValue(addr[2], a*b)
		}

	case OpJump:
		if err := arity(args, 1, "GOTO"); err != nil {
			return fatal(err)
		}
		offset, err := parseOffset(args[0])
		if err != nil {
			return fatal(err)
		}
		vm.pc += offset
		return true, nil

	case OpPrint:
		if err := arity(args, 1, "PRINT"); err != nil {
			return fatal(err)
		}
		addr, err := parseHex(args[0])
		if err != nil {
			return fatal(err)
		}
		fmt.Fprint(vm.host, string(rune(vm.GetValue(addr))))

	case OpInput:
		if err := arity(args, 1, "INPUT"); err != nil {
			return fatal(err)
		}
		dest, err := parseHex(args[0])
		if err != nil {
			return fatal(err)
		}
		b, err := vm.host.ReadByte()
		if err != nil {
			vm.running = false
			break
		}
		vm.SetValue(dest, int(b))

	case OpSetMem:
		if err := arity(args, 2, "SETMEM"); err != nil {
			return fatal(err)
		}
		v, err := parseHexArgs(args)
		if err != nil {
			return fatal(err)
		}
		addr, val := v[0], v[1]
		if !inRange(addr) {
			vm.errorCode = CodeOutOfRange
			break
		}
		if val < 0 || val > 0xFFFF {
			return fatal(fmt.Errorf("SETMEM value %#x does not fit in 16 bits", val))
		}
		vm.mem.putWord(addr, uint16(val))

	case OpHalt:
		vm.running = false

	case OpBranchOnError:
		if err := arity(args, 2, "CONDITIONAL"); err != nil {
			return fatal(err)
		}
		code, err := parseOffset(args[0])
		if err != nil {
			return fatal(err)
		}
		offset, err := parseOffset(args[1])
		if err != nil {
			return fatal(err)
		}
		if previous == code {
			vm.pc += offset
			return true, nil
		}

	default:
		return false, &InstructionError{Line: vm.pc, Op: op, Reason: errUnknownOpcode.Error()}
	}
	return false, nil
}

func reverseRunes(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}
