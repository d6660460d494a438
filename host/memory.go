package host

import (
	"bytes"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// Memory is an in-process host. Output is captured, input comes from a
// fixed string and the "working directory" is a set of file names.
type Memory struct {
	Output bytes.Buffer
	Files  map[string]bool

	Millis int64
	Login  string

	Flashes int
	Tones   []int

	in *strings.Reader
}

// NewMemory returns a host whose input stream yields input and then EOF.
func NewMemory(input string) *Memory {
	return &Memory{
		Files: make(map[string]bool),
		in:    strings.NewReader(input),
	}
}

func (h *Memory) Write(p []byte) (int, error) {
	return h.Output.Write(p)
}

func (h *Memory) ReadByte() (byte, error) {
	return h.in.ReadByte()
}

func (h *Memory) NowMillis() int64 {
	return h.Millis
}

func (h *Memory) LoginName() (string, error) {
	if h.Login == "" {
		return "", fmt.Errorf("no login name")
	}
	return h.Login, nil
}

func (h *Memory) ListFiles() ([]string, error) {
	names := make([]string, 0, len(h.Files))
	for name := range h.Files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (h *Memory) RemoveFile(name string) error {
	if !h.Files[name] {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(h.Files, name)
	return nil
}

func (h *Memory) Flash() {
	h.Flashes++
}

func (h *Memory) Tone(hz int) {
	h.Tones = append(h.Tones, hz)
}
