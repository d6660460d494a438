package vm

import (
	"fmt"
	"os"
	"strings"

	"github.com/chazu/mmm/container"
)

// LoadResult tells an embedding caller what LoadAndRun did, so it need
// not parse the printed diagnostics.
type LoadResult struct {
	Special bool // file carried the special magic
	Loaded  bool // special record validated (always true for plain files that were read)
	Halted  bool // a Halt side effect stopped the VM before the program ran
	Ran     bool // the program body was executed
}

// LoadAndRun reads the program at path and runs it. Special files are
// decrypted with a key derived from the host, their side effects are
// applied, and their volatility parameters replace the VM's before the
// decoded source runs.
func (vm *VM) LoadAndRun(path string) LoadResult {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(vm.host, "Error loading or running file %s: %s\n", path, err)
		vm.running = false
		return LoadResult{}
	}

	if !container.IsSpecial(data) {
		log.Infof("running plain file %s", path)
		vm.Run(strings.ToValidUTF8(string(data), ""))
		return LoadResult{Loaded: true, Ran: true}
	}

	res := LoadResult{Special: true}
	rec, err := container.LoadBytes(path, data, vm.host)
	if err != nil {
		fmt.Fprintf(vm.host, "Error loading special file '%s': %s\n", path, err)
		return res
	}
	res.Loaded = rec.Loaded

	fmt.Fprintln(vm.host, "Detected special .mmm file. Prepare for chaos!")
	vm.ApplySideEffects(rec.SideEffects)
	if !vm.running {
		res.Halted = true
		return res
	}

	vm.SetVolatility(rec.VolatilityRate, rec.VolatilitySeed)
	fmt.Fprintln(vm.host, "Special file loaded. Running with modified settings.")
	vm.Run(rec.Code)
	res.Ran = true
	return res
}
