package vm

import "math/rand/v2"

// MemorySize is the number of addressable bytes.
const MemorySize = 1 << 16

// ---------------------------------------------------------------------------
// Memory: the byte image and its volatility map
// ---------------------------------------------------------------------------

// Memory is the VM's byte image together with a parallel map marking
// which cells are corrupted whenever they are accessed. Both arrays have
// MemorySize entries.
type Memory struct {
	cells    [MemorySize]byte
	volatile [MemorySize]bool
}

// inRange reports whether addr is a valid cell index.
func inRange(addr int) bool {
	return addr >= 0 && addr < MemorySize
}

// remap draws one value per cell from rng; a cell is volatile iff its
// draw is below rate.
func (m *Memory) remap(rng *rand.Rand, rate float64) {
	for i := range m.volatile {
		m.volatile[i] = rng.Float64() < rate
	}
}

// touch overwrites a volatile cell with a fresh random byte.
func (m *Memory) touch(addr int, rng *rand.Rand) {
	if m.volatile[addr] {
		m.cells[addr] = byte(rng.UintN(256))
	}
}

// word reads the little-endian 16-bit value at addr. A high byte past
// the end of memory reads as zero.
func (m *Memory) word(addr int) int {
	v := int(m.cells[addr])
	if inRange(addr + 1) {
		v |= int(m.cells[addr+1]) << 8
	}
	return v
}

// putWord stores v little-endian at addr, dropping a high byte that would
// fall past the end of memory.
func (m *Memory) putWord(addr int, v uint16) {
	m.cells[addr] = byte(v)
	if inRange(addr + 1) {
		m.cells[addr+1] = byte(v >> 8)
	}
}
