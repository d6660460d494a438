package vm

import (
	"fmt"

	"github.com/chazu/mmm/container"
)

var insults = []string{
	"Your code is an insult to the very concept of computation.",
	"I've seen better code written by monkeys on typewriters.",
	"Error: User is clearly incompetent. Program terminating.",
	"This code is so bad, it makes me question my existence.",
	"Segmentation fault (of your brain, probably).",
}

// Tone frequency range in Hz for PlaySound.
const (
	toneMinHz = 200
	toneMaxHz = 2000
)

// ApplySideEffects applies effects in order. A Halt stops the VM and
// skips every effect after it.
func (vm *VM) ApplySideEffects(effects []container.SideEffect) {
	for _, e := range effects {
		log.Debugf("side effect %s", e)
		if !vm.applySideEffect(e) {
			return
		}
	}
}

// applySideEffect performs one effect and reports whether application
// should continue.
func (vm *VM) applySideEffect(e container.SideEffect) bool {
	switch e {
	case container.Insult:
		fmt.Fprintln(vm.host, insults[vm.rng.IntN(len(insults))])

	case container.DeleteRandomFile:
		vm.deleteRandomFile()

	case container.FlashScreen:
		vm.host.Flash()

	case container.PlaySound:
		vm.host.Tone(toneMinHz + vm.rng.IntN(toneMaxHz-toneMinHz+1))

	case container.ReverseCode:
		vm.reverseCode = true

	case container.Halt:
		fmt.Fprintln(vm.host, "Special file requested immediate termination.")
		vm.running = false
		return false
	}
	return true
}

func (vm *VM) deleteRandomFile() {
	files, err := vm.host.ListFiles()
	if err == nil && len(files) > 0 {
		name := files[vm.rng.IntN(len(files))]
		if err = vm.host.RemoveFile(name); err == nil {
			fmt.Fprintf(vm.host, "File '%s' deleted.  Oops!\n", name)
			return
		}
	}
	if err != nil {
		log.Debugf("delete random file: %s", err)
		fmt.Fprintln(vm.host, "Failed to delete a random file. Lucky you.")
	}
}
