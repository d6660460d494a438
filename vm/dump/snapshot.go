// Package dump stores VM snapshots ("core dumps") as CBOR so that memory
// and registers can be inspected or restored after a run.
package dump

// Snapshot is the persisted state of a VM at the end of a run.
type Snapshot struct {
	RunID          string  `cbor:"1,keyasint"`
	PC             int     `cbor:"2,keyasint"`
	ErrorCode      int     `cbor:"3,keyasint"`
	Running        bool    `cbor:"4,keyasint"`
	ReverseCode    bool    `cbor:"5,keyasint"`
	VolatilityRate float64 `cbor:"6,keyasint"`
	VolatilitySeed uint32  `cbor:"7,keyasint"`
	Memory         []byte  `cbor:"8,keyasint"`
}
