package container

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("mmm.container")

// Load reads and decodes the special file at path, deriving the key
// from src. On failure it returns an unloaded, empty record together
// with the error; nothing from a partially decoded payload is exposed.
func Load(path string, src KeySource) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Record{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return LoadBytes(path, data, src)
}

// LoadBytes decodes data already read from path. The key depends on
// path, so it must be the name the file was created under.
func LoadBytes(path string, data []byte, src KeySource) (*Record, error) {
	rec, err := Open(data, KeyFor(path, src))
	if err != nil {
		log.Debugf("load %s failed: %s", path, err)
		return &Record{}, err
	}

	log.Debugf("loaded %s: rate=%g seed=%d effects=%v", path, rec.VolatilityRate, rec.VolatilitySeed, rec.SideEffects)
	return rec, nil
}

// Create writes rec to path as a special file, deriving the key from src.
// A rate outside [0, 1] is rejected rather than clamped.
func Create(path string, rec *Record, src KeySource) error {
	if !(rec.VolatilityRate >= 0 && rec.VolatilityRate <= 1) {
		return fmt.Errorf("%w: %v", ErrRateRange, rec.VolatilityRate)
	}
	data := Seal(rec, KeyFor(path, src))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	log.Infof("wrote special file %s (%d bytes, %d side effects)", path, len(data), len(rec.SideEffects))
	return nil
}
