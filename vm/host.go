package vm

import (
	"io"

	"github.com/chazu/mmm/container"
)

// Host is everything the VM needs from its surroundings. Every method is
// best-effort: failures are reported as text, never as VM faults.
type Host interface {
	io.Writer
	io.ByteReader
	container.KeySource

	// ListFiles returns the names of regular files in the working directory.
	ListFiles() ([]string, error)
	// RemoveFile deletes a file returned by ListFiles.
	RemoveFile(name string) error
	// Flash briefly changes the terminal color and restores it.
	Flash()
	// Tone emits a short tone at hz where the host can.
	Tone(hz int)
}
