package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[vm]
volatility-rate = 0.01
volatility-seed = 7

[log]
verbosity = 3
file = "mmm.log"

[effects]
flash-ms = 50
tone-ms = 75

[pack]
volatility-rate = 0.5
volatility-seed = 1234
side-effects = [1, 5, 255]
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.VM.VolatilityRate != 0.01 {
		t.Errorf("vm rate = %v, want 0.01", m.VM.VolatilityRate)
	}
	if m.Seed() != 7 {
		t.Errorf("vm seed = %d, want 7", m.Seed())
	}
	if m.Log.Verbosity != 3 || m.Log.File != "mmm.log" {
		t.Errorf("log = %+v, want verbosity 3 file mmm.log", m.Log)
	}
	if m.FlashDuration() != 50*time.Millisecond {
		t.Errorf("flash = %v, want 50ms", m.FlashDuration())
	}
	if m.ToneDuration() != 75*time.Millisecond {
		t.Errorf("tone = %v, want 75ms", m.ToneDuration())
	}
	if m.Pack.VolatilitySeed != 1234 || m.Pack.VolatilityRate != 0.5 {
		t.Errorf("pack = %+v", m.Pack)
	}
	if len(m.Pack.SideEffects) != 3 || m.Pack.SideEffects[2] != 255 {
		t.Errorf("pack side-effects = %v, want [1 5 255]", m.Pack.SideEffects)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[vm]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.VM.VolatilityRate != 0 {
		t.Errorf("vm rate = %v, want 0", m.VM.VolatilityRate)
	}
	if m.Seed() != 42 {
		t.Errorf("vm seed = %d, want 42", m.Seed())
	}
	if m.Log.Verbosity != 0 {
		t.Errorf("log verbosity = %d, want 0", m.Log.Verbosity)
	}
	if m.FlashDuration() != 200*time.Millisecond || m.ToneDuration() != 200*time.Millisecond {
		t.Errorf("effect durations = %v/%v, want 200ms", m.FlashDuration(), m.ToneDuration())
	}
}

func TestLoadManifestExplicitZeroSeed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[vm]\nvolatility-seed = 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m.Seed() != 0 {
		t.Errorf("vm seed = %d, want 0", m.Seed())
	}
}

func TestLoadManifestValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"rate above one", "[vm]\nvolatility-rate = 1.5\n"},
		{"negative pack rate", "[pack]\nvolatility-rate = -0.1\n"},
		{"tag too large", "[pack]\nside-effects = [256]\n"},
		{"bad toml", "[vm\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(dir); err == nil {
				t.Error("Load succeeded, want error")
			}
		})
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("[vm]\nvolatility-seed = 9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "progs", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Seed() != 9 {
		t.Errorf("seed = %d, want 9", m.Seed())
	}
	abs, _ := filepath.Abs(root)
	if m.Dir != abs {
		t.Errorf("Dir = %q, want %q", m.Dir, abs)
	}
}

func TestDefault(t *testing.T) {
	m := Default()
	if m.Seed() != 42 || m.VM.VolatilityRate != 0 {
		t.Errorf("Default() = %+v", m.VM)
	}
}
