package vm

import (
	"math/rand/v2"

	"github.com/tliron/commonlog"

	"github.com/chazu/mmm/host"
)

var log = commonlog.GetLogger("mmm.vm")

// DefaultSeed is the volatility seed used when none is configured.
const DefaultSeed uint32 = 42

// Error register values.
const (
	CodeNone       = 0
	CodeOutOfRange = 1 // address or pointer outside memory
	CodeMalformed  = 2 // unknown opcode, bad arity or bad literal
)

// ---------------------------------------------------------------------------
// VM: the volatile double-indirect machine
// ---------------------------------------------------------------------------

// VM owns a memory image, its random stream and the execution registers.
// A VM is not safe for concurrent use.
type VM struct {
	mem Memory
	rng *rand.Rand

	rate float64
	seed uint32

	pc          int
	errorCode   int
	running     bool
	reverseCode bool

	host Host
}

// Option configures a VM at construction.
type Option func(*VM)

// WithHost sets the host the VM reads from and writes to.
func WithHost(h Host) Option {
	return func(vm *VM) {
		vm.host = h
	}
}

// New creates a running VM with zeroed memory and a volatility map
// derived from rate and seed. Without WithHost it talks to the real
// console and working directory.
func New(rate float64, seed uint32, opts ...Option) *VM {
	vm := &VM{running: true}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.host == nil {
		vm.host = host.NewOS()
	}
	vm.SetVolatility(rate, seed)
	return vm
}

// SetVolatility re-seeds the VM's random stream and recomputes the
// volatility map.
func (vm *VM) SetVolatility(rate float64, seed uint32) {
	vm.rate = rate
	vm.seed = seed
	vm.rng = rand.New(rand.NewPCG(uint64(seed), 0))
	vm.mem.remap(vm.rng, rate)
	log.Debugf("volatility rate=%g seed=%d", rate, seed)
}

// ---------------------------------------------------------------------------
// Two-level addressing
// ---------------------------------------------------------------------------

// resolve follows the pointer stored at address. Both the address cell
// and the pointed-to cell are corrupted first if volatile. An address or
// pointer outside memory sets the error register to CodeOutOfRange.
func (vm *VM) resolve(address int) (int, bool) {
	if !inRange(address) {
		vm.errorCode = CodeOutOfRange
		return 0, false
	}
	vm.mem.touch(address, vm.rng)

	ptr := vm.mem.word(address)
	if !inRange(ptr) {
		vm.errorCode = CodeOutOfRange
		return 0, false
	}
	vm.mem.touch(ptr, vm.rng)
	return ptr, true
}

// GetValue returns the byte the cell at address points to, or 0 when
// resolution fails.
func (vm *VM) GetValue(address int) byte {
	ptr, ok := vm.resolve(address)
	if !ok {
		return 0
	}
	return vm.mem.cells[ptr]
}

// SetValue stores value&0xFF into the cell address points to. Resolution
// failures are recorded in the error register only.
func (vm *VM) SetValue(address int, value int) {
	ptr, ok := vm.resolve(address)
	if !ok {
		return
	}
	vm.mem.cells[ptr] = byte(value & 0xFF)
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// PC returns the index of the next line to execute.
func (vm *VM) PC() int { return vm.pc }

// ErrorCode returns the error register.
func (vm *VM) ErrorCode() int { return vm.errorCode }

// Running reports whether the VM will execute further lines.
func (vm *VM) Running() bool { return vm.running }

// ReverseCode reports whether the next Run reverses each line first.
func (vm *VM) ReverseCode() bool { return vm.reverseCode }

// VolatilityRate returns the rate the volatility map was built from.
func (vm *VM) VolatilityRate() float64 { return vm.rate }

// VolatilitySeed returns the seed of the VM's random stream.
func (vm *VM) VolatilitySeed() uint32 { return vm.seed }

// Volatile reports whether addr is marked volatile. Out-of-range
// addresses are never volatile.
func (vm *VM) Volatile(addr int) bool {
	return inRange(addr) && vm.mem.volatile[addr]
}

// Memory returns a copy of the memory image.
func (vm *VM) Memory() []byte {
	out := make([]byte, MemorySize)
	copy(out, vm.mem.cells[:])
	return out
}

// Peek reads a raw cell without indirection or corruption.
func (vm *VM) Peek(addr int) byte {
	if !inRange(addr) {
		return 0
	}
	return vm.mem.cells[addr]
}

// Poke writes a raw cell without indirection or corruption.
func (vm *VM) Poke(addr int, b byte) {
	if inRange(addr) {
		vm.mem.cells[addr] = b
	}
}

// Rewind moves the program counter back to the first line, clears the
// error register and marks the VM running. Memory is left untouched.
func (vm *VM) Rewind() {
	vm.pc = 0
	vm.errorCode = CodeNone
	vm.running = true
}
