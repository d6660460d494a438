package vm

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chazu/mmm/vm/dump"
)

// Snapshot captures memory, registers and volatility parameters under a
// fresh run ID.
func (vm *VM) Snapshot() *dump.Snapshot {
	return &dump.Snapshot{
		RunID:          uuid.NewString(),
		PC:             vm.pc,
		ErrorCode:      vm.errorCode,
		Running:        vm.running,
		ReverseCode:    vm.reverseCode,
		VolatilityRate: vm.rate,
		VolatilitySeed: vm.seed,
		Memory:         vm.Memory(),
	}
}

// Restore loads a snapshot's memory image and registers. The volatility
// map and random stream are rebuilt from the snapshot's parameters, so
// they start over rather than continuing the saved stream.
func (vm *VM) Restore(s *dump.Snapshot) error {
	if len(s.Memory) != MemorySize {
		return fmt.Errorf("snapshot %s: memory is %d bytes, want %d", s.RunID, len(s.Memory), MemorySize)
	}
	vm.SetVolatility(s.VolatilityRate, s.VolatilitySeed)
	copy(vm.mem.cells[:], s.Memory)
	vm.pc = s.PC
	vm.errorCode = s.ErrorCode
	vm.running = s.Running
	vm.reverseCode = s.ReverseCode
	log.Infof("restored snapshot %s at pc=%d", s.RunID, s.PC)
	return nil
}
