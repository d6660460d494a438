// Package manifest handles mmm.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up next to programs.
const FileName = "mmm.toml"

// Manifest represents an mmm.toml configuration.
type Manifest struct {
	VM      VMConfig      `toml:"vm"`
	Log     LogConfig     `toml:"log"`
	Effects EffectsConfig `toml:"effects"`
	Pack    PackConfig    `toml:"pack"`

	// Dir is the directory containing the mmm.toml file (set at load time).
	Dir string `toml:"-"`
}

// VMConfig sets the volatility a VM starts with.
type VMConfig struct {
	VolatilityRate float64 `toml:"volatility-rate"`
	VolatilitySeed *uint32 `toml:"volatility-seed"`
}

// LogConfig configures diagnostic logging. Verbosity follows commonlog:
// 0 logs notices and above, 1 adds info, 2 adds debug.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// EffectsConfig tunes the host side of side effects.
type EffectsConfig struct {
	FlashMS int `toml:"flash-ms"`
	ToneMS  int `toml:"tone-ms"`
}

// PackConfig holds defaults for writing special files.
type PackConfig struct {
	VolatilityRate float64 `toml:"volatility-rate"`
	VolatilitySeed uint32  `toml:"volatility-seed"`
	SideEffects    []int   `toml:"side-effects"`
}

// Default returns the configuration used when no mmm.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.VM.VolatilitySeed == nil {
		seed := uint32(42)
		m.VM.VolatilitySeed = &seed
	}
	if m.Effects.FlashMS == 0 {
		m.Effects.FlashMS = 200
	}
	if m.Effects.ToneMS == 0 {
		m.Effects.ToneMS = 200
	}
}

// Validate checks value ranges.
func (m *Manifest) Validate() error {
	if m.VM.VolatilityRate < 0 || m.VM.VolatilityRate > 1 {
		return fmt.Errorf("vm.volatility-rate %v outside [0, 1]", m.VM.VolatilityRate)
	}
	if m.Pack.VolatilityRate < 0 || m.Pack.VolatilityRate > 1 {
		return fmt.Errorf("pack.volatility-rate %v outside [0, 1]", m.Pack.VolatilityRate)
	}
	for _, tag := range m.Pack.SideEffects {
		if tag < 0 || tag > 0xFF {
			return fmt.Errorf("pack.side-effects: tag %d is not a byte", tag)
		}
	}
	return nil
}

// FlashDuration returns the configured flash length.
func (m *Manifest) FlashDuration() time.Duration {
	return time.Duration(m.Effects.FlashMS) * time.Millisecond
}

// ToneDuration returns the configured tone length.
func (m *Manifest) ToneDuration() time.Duration {
	return time.Duration(m.Effects.ToneMS) * time.Millisecond
}

// Seed returns the configured VM volatility seed.
func (m *Manifest) Seed() uint32 {
	return *m.VM.VolatilitySeed
}

// LoadFile parses the mmm.toml at path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &m, nil
}

// Load parses the mmm.toml file in dir.
func Load(dir string) (*Manifest, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// FindAndLoad walks up from startDir to find an mmm.toml file, then
// loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}
