package vm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/mmm/container"
	"github.com/chazu/mmm/host"
)

const printA = "# 0 5\n# 5 41\n! 0\n@"

// writeSpecial seals rec for path using h's clock and login.
func writeSpecial(t *testing.T, path string, rec *container.Record, h *host.Memory) {
	t.Helper()
	if err := container.Create(path, rec, h); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func newLoaderVM() (*VM, *host.Memory) {
	vm, h := newTestVM(0, DefaultSeed, "")
	h.Millis = 1700000000123
	h.Login = "tester"
	return vm, h
}

func TestLoadAndRunPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.mmm")
	if err := os.WriteFile(path, []byte(printA), 0o644); err != nil {
		t.Fatal(err)
	}
	vm, h := newLoaderVM()

	res := vm.LoadAndRun(path)

	if res.Special || !res.Ran {
		t.Errorf("result = %+v, want a plain run", res)
	}
	if got, want := h.Output.String(), "A"+finished; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLoadAndRunSpecialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "special.mmm")
	vm, h := newLoaderVM()
	writeSpecial(t, path, &container.Record{
		Code:           printA,
		VolatilityRate: 0,
		VolatilitySeed: 321,
		SideEffects:    []container.SideEffect{container.FlashScreen},
	}, h)

	res := vm.LoadAndRun(path)

	if !res.Special || !res.Loaded || !res.Ran || res.Halted {
		t.Errorf("result = %+v", res)
	}
	want := "Detected special .mmm file. Prepare for chaos!\n" +
		"Special file loaded. Running with modified settings.\n" +
		"A" + finished
	if got := h.Output.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if vm.VolatilitySeed() != 321 {
		t.Errorf("seed = %d, want 321", vm.VolatilitySeed())
	}
	if h.Flashes != 1 {
		t.Errorf("flashes = %d, want 1", h.Flashes)
	}
}

func TestLoadAndRunSpecialFileReplacesVolatility(t *testing.T) {
	path := filepath.Join(t.TempDir(), "special.mmm")
	vm, h := newLoaderVM()
	writeSpecial(t, path, &container.Record{Code: "@", VolatilityRate: 1, VolatilitySeed: 8}, h)

	vm.LoadAndRun(path)

	if vm.VolatilityRate() != 1 {
		t.Errorf("rate = %v, want 1", vm.VolatilityRate())
	}
	if !vm.Volatile(0) {
		t.Error("volatility map was not rebuilt from the special file")
	}
}

func TestLoadAndRunHaltPreventsExecution(t *testing.T) {
	path := filepath.Join(t.TempDir(), "special.mmm")
	vm, h := newLoaderVM()
	h.Files["keep.txt"] = true
	writeSpecial(t, path, &container.Record{
		Code:        printA,
		SideEffects: []container.SideEffect{container.ReverseCode, container.Halt, container.DeleteRandomFile},
	}, h)

	res := vm.LoadAndRun(path)

	if !res.Halted || res.Ran {
		t.Errorf("result = %+v, want halted without running", res)
	}
	if strings.Contains(h.Output.String(), "Program finished") {
		t.Errorf("program body ran: %q", h.Output.String())
	}
	if !h.Files["keep.txt"] {
		t.Error("side effect after Halt deleted a file")
	}
	if vm.PC() != 0 {
		t.Errorf("pc = %d, want 0", vm.PC())
	}
}

func TestLoadAndRunReverseCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "special.mmm")
	vm, h := newLoaderVM()
	writeSpecial(t, path, &container.Record{
		Code:        "5 0 #\n14 5 #\n0 !\n@",
		SideEffects: []container.SideEffect{container.ReverseCode},
	}, h)

	vm.LoadAndRun(path)

	if !strings.HasSuffix(h.Output.String(), "A"+finished) {
		t.Errorf("output = %q, want the reversed program to print A", h.Output.String())
	}
}

func TestLoadAndRunCorruptSpecialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "special.mmm")
	vm, h := newLoaderVM()
	h.Files["keep.txt"] = true
	writeSpecial(t, path, &container.Record{
		Code:        printA,
		SideEffects: []container.SideEffect{container.DeleteRandomFile},
	}, h)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-2] ^= 0x01
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	res := vm.LoadAndRun(path)

	if !res.Special || res.Loaded || res.Ran {
		t.Errorf("result = %+v, want a failed special load", res)
	}
	if !strings.HasPrefix(h.Output.String(), "Error loading special file '"+path+"': ") {
		t.Errorf("output = %q", h.Output.String())
	}
	if !h.Files["keep.txt"] {
		t.Error("side effect applied from a corrupt file")
	}
}

// A file sealed at one instant is read back with a later clock; the
// derived key differs and the load fails.
func TestLoadAndRunSpecialFileAfterClockAdvances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "special.mmm")
	vm, h := newLoaderVM()
	writeSpecial(t, path, &container.Record{Code: printA}, h)

	h.Millis++
	res := vm.LoadAndRun(path)

	if res.Loaded {
		t.Error("special file loaded with a different clock; key no longer depends on time")
	}
}

func TestLoadAndRunMissingFile(t *testing.T) {
	vm, h := newLoaderVM()
	path := filepath.Join(t.TempDir(), "nope.mmm")

	res := vm.LoadAndRun(path)

	if res.Ran {
		t.Error("missing file reported as run")
	}
	if vm.Running() {
		t.Error("VM still running after a failed read")
	}
	if !strings.HasPrefix(h.Output.String(), "Error loading or running file "+path) {
		t.Errorf("output = %q", h.Output.String())
	}
}
