package vm

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/chazu/mmm/container"
	"github.com/chazu/mmm/host"
)

func TestHaltShortCircuits(t *testing.T) {
	vm, h := newTestVM(0, DefaultSeed, "")
	h.Files["precious.txt"] = true

	vm.ApplySideEffects([]container.SideEffect{
		container.FlashScreen,
		container.Halt,
		container.ReverseCode,
		container.DeleteRandomFile,
		container.PlaySound,
	})

	if vm.Running() {
		t.Error("VM still running after Halt")
	}
	if vm.ReverseCode() {
		t.Error("ReverseCode after Halt was applied")
	}
	if !h.Files["precious.txt"] {
		t.Error("DeleteRandomFile after Halt was applied")
	}
	if len(h.Tones) != 0 {
		t.Error("PlaySound after Halt was applied")
	}
	if h.Flashes != 1 {
		t.Errorf("flashes = %d, want 1", h.Flashes)
	}
	if got, want := h.Output.String(), "Special file requested immediate termination.\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestInsult(t *testing.T) {
	vm, h := newTestVM(0, DefaultSeed, "")
	vm.ApplySideEffects([]container.SideEffect{container.Insult})

	line := strings.TrimSuffix(h.Output.String(), "\n")
	if !slices.Contains(insults, line) {
		t.Errorf("output %q is not one of the insults", line)
	}
}

func TestDeleteRandomFile(t *testing.T) {
	vm, h := newTestVM(0, DefaultSeed, "")
	h.Files["a.txt"] = true
	h.Files["b.txt"] = true

	vm.ApplySideEffects([]container.SideEffect{container.DeleteRandomFile})

	if len(h.Files) != 1 {
		t.Fatalf("files left = %v, want exactly one", h.Files)
	}
	var deleted string
	for _, name := range []string{"a.txt", "b.txt"} {
		if !h.Files[name] {
			deleted = name
		}
	}
	if got, want := h.Output.String(), "File '"+deleted+"' deleted.  Oops!\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDeleteRandomFileEmptyDirectory(t *testing.T) {
	vm, h := newTestVM(0, DefaultSeed, "")
	vm.ApplySideEffects([]container.SideEffect{container.DeleteRandomFile})

	if h.Output.Len() != 0 {
		t.Errorf("output = %q, want nothing", h.Output.String())
	}
}

// stubbornHost refuses to delete anything.
type stubbornHost struct {
	*host.Memory
}

func (stubbornHost) RemoveFile(string) error {
	return errors.New("permission denied")
}

func TestDeleteRandomFileFailureIsReported(t *testing.T) {
	h := stubbornHost{host.NewMemory("")}
	h.Files["a.txt"] = true
	vm := New(0, DefaultSeed, WithHost(h))

	vm.ApplySideEffects([]container.SideEffect{container.DeleteRandomFile, container.ReverseCode})

	if got, want := h.Output.String(), "Failed to delete a random file. Lucky you.\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if !vm.ReverseCode() {
		t.Error("a failed deletion stopped later side effects")
	}
}

func TestPlaySoundAndFlash(t *testing.T) {
	vm, h := newTestVM(0, DefaultSeed, "")
	vm.ApplySideEffects([]container.SideEffect{container.PlaySound, container.FlashScreen})

	if len(h.Tones) != 1 {
		t.Fatalf("tones = %v, want one", h.Tones)
	}
	if hz := h.Tones[0]; hz < toneMinHz || hz > toneMaxHz {
		t.Errorf("tone = %d Hz, want within [%d, %d]", hz, toneMinHz, toneMaxHz)
	}
	if h.Flashes != 1 {
		t.Errorf("flashes = %d, want 1", h.Flashes)
	}
	if !vm.Running() {
		t.Error("cosmetic side effects stopped the VM")
	}
}

func TestReverseCodeSideEffect(t *testing.T) {
	vm, _ := newTestVM(0, DefaultSeed, "")
	vm.ApplySideEffects([]container.SideEffect{container.ReverseCode})

	if !vm.ReverseCode() {
		t.Error("ReverseCode flag not set")
	}
}
