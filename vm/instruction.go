package vm

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Opcode symbols.
const (
	OpAdd           = "^"
	OpMul           = "*"
	OpJump          = ">"
	OpPrint         = "!"
	OpInput         = "<"
	OpSetMem        = "#"
	OpHalt          = "@"
	OpBranchOnError = "?"
)

// InstructionError describes a malformed instruction. Fatal errors stop
// the run; the others only set the error register.
type InstructionError struct {
	Line   int
	Op     string
	Reason string
	Fatal  bool
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// errUnknownOpcode is the non-fatal fault for an unrecognised symbol.
var errUnknownOpcode = errors.New("unknown opcode")

// arity checks the argument count, naming the instruction the way the
// diagnostics do.
func arity(args []string, want int, name string) error {
	if len(args) == want {
		return nil
	}
	switch want {
	case 1:
		return fmt.Errorf("%s requires 1 argument", name)
	default:
		return fmt.Errorf("%s requires %d arguments", name, want)
	}
}

// parseHex parses a hexadecimal literal with an optional sign and 0x
// prefix. Literals too large for int64 saturate, so they still land
// outside memory instead of failing to parse.
func parseHex(s string) (int, error) {
	digits := s
	neg := false
	switch {
	case strings.HasPrefix(digits, "-"):
		neg = true
		digits = digits[1:]
	case strings.HasPrefix(digits, "+"):
		digits = digits[1:]
	}
	if len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		digits = digits[2:]
	}
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, fmt.Errorf("invalid hex literal %q", s)
	}
	v, err := strconv.ParseUint(digits, 16, 63)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			v = math.MaxInt64
		} else {
			return 0, fmt.Errorf("invalid hex literal %q", s)
		}
	}
	if neg {
		return -int(v), nil
	}
	return int(v), nil
}

// parseHexArgs parses every argument as hex.
func parseHexArgs(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := parseHex(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseOffset parses a signed decimal literal. Offsets are bounded to
// 32 bits; larger magnitudes saturate and jump out of any program.
func parseOffset(s string) (int, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return int(v), nil
		}
		return 0, fmt.Errorf("invalid decimal literal %q", s)
	}
	return int(v), nil
}
